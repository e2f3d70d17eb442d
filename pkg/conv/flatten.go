package conv

import (
	"iter"

	"golang.org/x/net/html"
)

const (
	bulletMarker    = "- "
	quoteMarker     = "> "
	ruleMarker      = "\n────────────────────\n"
	checkedMarker   = "☑ "
	uncheckedMarker = "☐ "

	taskListItemClass = "task-list-item"
)

var structuralElements = map[string]bool{
	"li":         true,
	"blockquote": true,
	"input":      true,
	"hr":         true,
	"p":          true,
}

// TokenKind classifies a token the way the flattening rules see it.
type TokenKind int

const (
	KindOther TokenKind = iota
	KindStartTag
	KindEndTag
	KindEmptyTag
	KindCharacters
)

// Kind reports the kind of tok. Void elements are empty tags whether or not
// they were written self-closing.
func Kind(tok html.Token) TokenKind {
	switch tok.Type {
	case html.TextToken:
		return KindCharacters
	case html.SelfClosingTagToken:
		return KindEmptyTag
	case html.StartTagToken:
		if voidElements[tok.Data] {
			return KindEmptyTag
		}
		return KindStartTag
	case html.EndTagToken:
		return KindEndTag
	default:
		return KindOther
	}
}

// flattener holds the state of a single Flatten pass.
//
// Nested blockquotes are not counted: the first closing blockquote clears
// inQuote even when an outer quote is still open.
type flattener struct {
	inQuote bool
}

// next consumes one token and emits zero or more replacement tokens in its
// place.
func (f *flattener) next(tok html.Token, emit func(html.Token) bool) bool {
	kind := Kind(tok)

	switch {
	case kind == KindStartTag && tok.Data == "li":
		if attrValue(tok, "class") != taskListItemClass {
			return emit(text(bulletMarker))
		}
		return true
	case kind == KindStartTag && tok.Data == "blockquote":
		f.inQuote = true
		return true
	case kind == KindEndTag && tok.Data == "blockquote":
		f.inQuote = false
		return true
	case kind == KindStartTag && tok.Data == "p":
		if f.inQuote {
			return emit(text(quoteMarker))
		}
		return true
	case kind == KindEmptyTag && tok.Data == "hr":
		return emit(text(ruleMarker))
	case kind == KindEmptyTag && tok.Data == "input":
		if hasAttr(tok, "checked") {
			return emit(text(checkedMarker))
		}
		return emit(text(uncheckedMarker))
	case (kind == KindStartTag || kind == KindEndTag || kind == KindEmptyTag) && structuralElements[tok.Data]:
		return true
	default:
		return emit(tok)
	}
}

// Flatten rewrites structural elements into inline text markers and drops
// the structural tags. Every range over the returned sequence starts with
// fresh state.
func Flatten(in iter.Seq[html.Token]) iter.Seq[html.Token] {
	return func(yield func(html.Token) bool) {
		var f flattener
		for tok := range in {
			if !f.next(tok, yield) {
				return
			}
		}
	}
}

func text(s string) html.Token {
	return html.Token{Type: html.TextToken, Data: s}
}

func attrValue(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(tok html.Token, key string) bool {
	for _, a := range tok.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
