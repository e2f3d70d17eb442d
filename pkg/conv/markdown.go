package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank

	tgPolicy = NewGitHubPolicy()
)

// MarkdownToHTML renders Markdown locally, without the GitHub API.
func MarkdownToHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return string(markdown.Render(p.Parse(md), renderer))
}

func MarkdownToTelegramHTML(md []byte) string {
	return tgPolicy.Render(MarkdownToHTML(md))
}
