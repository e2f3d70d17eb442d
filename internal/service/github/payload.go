package github

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sandevgo/hubgram/internal/core"
)

// Webhook payloads are decoded into untyped maps; these helpers walk them.

func object(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key].(map[string]any)
	return v, ok
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func integer(m map[string]any, key string) (int64, bool) {
	switch v := m[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func repositoryFrom(payload map[string]any) (core.Repository, error) {
	repo, ok := object(payload, "repository")
	if !ok {
		return core.Repository{}, fmt.Errorf("payload has no repository")
	}
	id, ok := integer(repo, "id")
	if !ok {
		return core.Repository{}, fmt.Errorf("repository has no id")
	}
	return core.Repository{ID: id, FullName: str(repo, "full_name")}, nil
}

func login(m map[string]any) string {
	if user, ok := object(m, "user"); ok {
		return str(user, "login")
	}
	return ""
}
