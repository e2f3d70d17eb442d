package conv

import (
	"iter"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Allowed tags https://core.telegram.org/bots/api#html-style
// li, input, blockquote, p and hr are let through the sanitizer only so that
// Flatten can turn them into text markers.
var allowedAttrs = map[string][]string{
	"a":          {"href"},
	"b":          nil,
	"code":       nil,
	"em":         nil,
	"i":          nil,
	"pre":        nil,
	"strong":     nil,
	"li":         {"class"},
	"input":      {"checked"},
	"blockquote": nil,
	"p":          nil,
	"hr":         nil,
}

// List containers are unwrapped instead of stripped, their items are
// rewritten by Flatten.
var unwrapElements = []string{"ul", "ol"}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Policy is an immutable sanitization configuration. It holds no per-call
// state and is safe for concurrent use.
type Policy struct {
	allowed map[string]map[string]bool
	unwrap  map[string]bool
	attrs   *bluemonday.Policy
}

// NewGitHubPolicy returns the policy used for GitHub-rendered issue bodies.
func NewGitHubPolicy() *Policy {
	p := &Policy{
		allowed: make(map[string]map[string]bool, len(allowedAttrs)),
		unwrap:  make(map[string]bool, len(unwrapElements)),
		attrs:   bluemonday.NewPolicy(),
	}

	for tag, attrs := range allowedAttrs {
		set := make(map[string]bool, len(attrs))
		for _, a := range attrs {
			set[a] = true
			p.attrs.AllowAttrs(a).OnElements(tag)
		}
		p.allowed[tag] = set
		p.attrs.AllowElements(tag)
	}
	for _, tag := range unwrapElements {
		p.unwrap[tag] = true
	}

	p.attrs.RequireParseableURLs(true)
	p.attrs.AllowRelativeURLs(true)
	p.attrs.AllowURLSchemes("mailto", "http", "https")
	// GitHub task list checkboxes lose every attribute when unchecked.
	p.attrs.AllowNoAttrs().OnElements("input")

	return p
}

// Clean removes every element that is not allow-listed together with its
// content, unwraps list containers, and strips attributes that are not
// allow-listed for their element. The result is still HTML and may contain
// structural tags.
func (p *Policy) Clean(fragment string) string {
	var sb strings.Builder
	for tok := range p.strip(Tokenize(fragment)) {
		sb.WriteString(tok.String())
	}
	return p.attrs.Sanitize(sb.String())
}

// Tokens returns the sanitized token stream of fragment.
func (p *Policy) Tokens(fragment string) iter.Seq[html.Token] {
	return Tokenize(p.Clean(fragment))
}

// Render sanitizes fragment and flattens it into the inline HTML subset
// accepted by Telegram's HTML parse mode.
func (p *Policy) Render(fragment string) string {
	return Serialize(Flatten(p.Tokens(fragment)))
}

// strip drops disallowed elements with their whole subtree. Comments and
// doctypes are dropped too.
func (p *Policy) strip(in iter.Seq[html.Token]) iter.Seq[html.Token] {
	return func(yield func(html.Token) bool) {
		var (
			skipping string
			depth    int
		)

		for tok := range in {
			if skipping != "" {
				switch {
				case tok.Type == html.StartTagToken && tok.Data == skipping:
					depth++
				case tok.Type == html.EndTagToken && tok.Data == skipping:
					depth--
					if depth == 0 {
						skipping = ""
					}
				}
				continue
			}

			switch tok.Type {
			case html.CommentToken, html.DoctypeToken:
				continue
			case html.TextToken:
				if !yield(tok) {
					return
				}
				continue
			}

			if p.unwrap[tok.Data] {
				continue
			}

			attrs, ok := p.allowed[tok.Data]
			if !ok {
				if tok.Type == html.StartTagToken && !voidElements[tok.Data] {
					skipping = tok.Data
					depth = 1
				}
				continue
			}

			tok.Attr = filterAttrs(tok.Attr, attrs)
			if !yield(tok) {
				return
			}
		}
	}
}

func filterAttrs(in []html.Attribute, allowed map[string]bool) []html.Attribute {
	var out []html.Attribute
	for _, a := range in {
		if a.Namespace == "" && allowed[a.Key] {
			out = append(out, a)
		}
	}
	return out
}
