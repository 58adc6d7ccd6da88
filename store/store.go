// Package store models the realtime state tree the dashboard and the
// guide controller share: a path-addressed key-value tree with point
// reads, whole-value writes and subscribe-for-changes on a subtree.
package store

import (
	"context"
	"encoding/json"
	"strings"
)

// Store is the persistence boundary for the shared state tree.
//
// Paths are slash-separated ("guide/dailyInstructions/2025-06-01").
// Get returns nil without error when the path holds no value. Set is a
// whole-value overwrite at the path; a write to a child path is visible
// through a read of any ancestor. Subscribe fires whenever a write
// touches the given path, one of its descendants or one of its
// ancestors, delivering the current value at the subscribed path
// (latest value wins, intermediate values may be skipped).
type Store interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Set(ctx context.Context, path string, value any) error
	Subscribe(path string, fn func(json.RawMessage)) (unsubscribe func(), err error)
}

// Decode reads the value at path into out. It reports found=false when
// the path holds no value, leaving out untouched.
func Decode(ctx context.Context, s Store, path string, out any) (bool, error) {
	raw, err := s.Get(ctx, path)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// splitPath splits a slash-separated path into its segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// overlaps reports whether a write at b is observable at a (equal path,
// ancestor or descendant).
func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}
