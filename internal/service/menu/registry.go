package menu

import (
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
)

const (
	SettingsMenu = "settings"
	LoginMenu    = "login"
)

type Registry struct {
	menus map[string]core.Menu
}

func NewRegistry(menus ...core.Menu) *Registry {
	r := &Registry{menus: make(map[string]core.Menu, len(menus))}
	for _, m := range menus {
		r.menus[m.Name()] = m
	}
	return r
}

func (r *Registry) Get(name string) (core.Menu, error) {
	m, ok := r.menus[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownMenu, name)
	}
	return m, nil
}
