package prefs

import (
	"context"
	"errors"
	"fmt"
)

// KeyView is the preference key holding the preferred list layout.
const KeyView = "preferredView"

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"

	DefaultView = ViewGrid
)

var ErrUnknownView = errors.New("unknown view mode")

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewGrid, ViewList:
		return ViewMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// Store is a durable key/value store partitioned by scope (a device id).
type Store interface {
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// LoadViewMode returns the stored view mode for scope, or DefaultView when
// nothing usable is stored.
func LoadViewMode(ctx context.Context, st Store, scope string) (ViewMode, error) {
	v, ok, err := st.Get(ctx, scope, KeyView)
	if err != nil {
		return DefaultView, err
	}
	if !ok {
		return DefaultView, nil
	}

	mode, err := ParseViewMode(v)
	if err != nil {
		return DefaultView, nil
	}
	return mode, nil
}

func SaveViewMode(ctx context.Context, st Store, scope string, mode ViewMode) error {
	if _, err := ParseViewMode(string(mode)); err != nil {
		return err
	}
	return st.Set(ctx, scope, KeyView, string(mode))
}
