package guide

import "fmt"

// ValidationError — the caller's input is unusable (no crop selected,
// incomplete guide state). Recovered locally, never fatal.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConfigError — a required credential or setting is missing. Fails the
// current request only.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string { return e.Missing + " not configured" }

// UpstreamError — a remote call failed or returned a non-success
// status. Retried only via an explicit user-initiated refresh.
type UpstreamError struct {
	Service string
	Status  int
	Msg     string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Service, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s error: %s", e.Service, e.Msg)
}
