// Package core holds small cross-cutting types shared by every layer.
package core

import "strings"

// Environment selects runtime behavior, chiefly log verbosity and format.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

func (e Environment) String() string { return string(e) }

// IsProduction reports whether the process runs with production settings.
func (e Environment) IsProduction() bool { return e == Production }

// ParseEnvironment maps a raw APP_ENV value onto a known environment,
// ignoring case and surrounding whitespace. Unrecognized values mean
// Development; a misconfigured process should come up verbose, not quiet.
func ParseEnvironment(v string) Environment {
	env := Environment(strings.ToLower(strings.TrimSpace(v)))
	switch env {
	case Development, Testing, Staging, Production:
		return env
	}
	return Development
}
