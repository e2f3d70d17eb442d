package conv

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// Telegram only requires '&' and '<' to be escaped outside of tags, so
// markers like "> " survive serialization verbatim.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;")

// EscapeText escapes s for use as text in a Telegram HTML message.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes s for use inside a double-quoted attribute value.
func EscapeAttr(s string) string {
	return html.EscapeString(s)
}

// Tokenize lazily splits fragment into HTML tokens. The tokenizer recovers
// from malformed markup the way browsers do and never fails.
func Tokenize(fragment string) iter.Seq[html.Token] {
	return func(yield func(html.Token) bool) {
		z := html.NewTokenizer(strings.NewReader(fragment))
		for {
			// ErrorToken is io.EOF for an in-memory reader.
			if z.Next() == html.ErrorToken {
				return
			}
			if !yield(z.Token()) {
				return
			}
		}
	}
}

// Serialize writes tokens back as Telegram-compatible HTML text.
func Serialize(tokens iter.Seq[html.Token]) string {
	var sb strings.Builder
	for tok := range tokens {
		switch tok.Type {
		case html.TextToken:
			sb.WriteString(textEscaper.Replace(tok.Data))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteString(tok.String())
		}
	}
	return sb.String()
}
