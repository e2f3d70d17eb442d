package core

import "errors"

var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrRender       = errors.New("render markdown")
	ErrAuth         = errors.New("github auth")
	ErrSend         = errors.New("send message")
	ErrInvalidState = errors.New("invalid oauth state")
	ErrNotLoggedIn  = errors.New("not logged in to github")
	ErrRepoNotFound = errors.New("repository not found")
	ErrUnknownMenu  = errors.New("unknown menu")
)
