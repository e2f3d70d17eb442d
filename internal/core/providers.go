package core

import "context"

// MarkdownRenderer turns GitHub Markdown into GitHub-flavored HTML in the
// context of a repository ("owner/name").
type MarkdownRenderer interface {
	Render(ctx context.Context, markdown, repoFullName string) (string, error)
}

// TokenExchanger completes the OAuth web flow.
type TokenExchanger interface {
	AuthURL(userID int64, messageID int) (string, error)
	Exchange(ctx context.Context, code, state string) (string, error)
}

// StateCodec signs and verifies the OAuth state parameter.
type StateCodec interface {
	Encode(userID int64, messageID int) (string, error)
	Decode(state string) (userID int64, messageID int, err error)
}

// RepoResolver looks up a repository with the caller's access token.
type RepoResolver interface {
	Repository(ctx context.Context, token, fullName string) (Repository, error)
}
