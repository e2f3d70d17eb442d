package github

import (
	"context"

	"github.com/sandevgo/hubgram/pkg/conv"
)

// LocalRenderer renders Markdown in-process. Issue references and mentions
// are not linked, but no API quota is spent.
type LocalRenderer struct{}

func NewLocalRenderer() *LocalRenderer {
	return &LocalRenderer{}
}

func (LocalRenderer) Render(_ context.Context, markdown, _ string) (string, error) {
	return conv.MarkdownToHTML([]byte(markdown)), nil
}
