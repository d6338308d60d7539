// Package gate decides whether an authenticated identity may reach a
// role-restricted resource. It performs no I/O and keeps no state between
// evaluations; credential authenticity is the authentication collaborator's
// responsibility and is established before the gate runs.
package gate

import "slices"

type Decision int

const (
	DecisionAllow Decision = iota
	DecisionUnauthenticated
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

func (d Decision) Allowed() bool {
	return d == DecisionAllow
}

type Gate struct {
	signInURL    string
	forbiddenURL string
}

// New builds a gate with its deny destinations. forbiddenURL may be empty,
// in which case both denial outcomes collapse to the sign-in destination.
func New(signInURL, forbiddenURL string) *Gate {
	return &Gate{
		signInURL:    signInURL,
		forbiddenURL: forbiddenURL,
	}
}

// Evaluate applies the denial checks in strict order: a missing credential
// wins over a role mismatch. Identical inputs always produce the identical
// decision.
func (g *Gate) Evaluate(credential string, role string, requiredRoles []string) Decision {
	if credential == "" {
		return DecisionUnauthenticated
	}
	if !slices.Contains(requiredRoles, role) {
		return DecisionForbidden
	}
	return DecisionAllow
}

// RedirectTarget resolves a denial to its navigation destination. Allow has
// no destination and returns the empty string.
func (g *Gate) RedirectTarget(d Decision) string {
	switch d {
	case DecisionUnauthenticated:
		return g.signInURL
	case DecisionForbidden:
		if g.forbiddenURL != "" {
			return g.forbiddenURL
		}
		return g.signInURL
	default:
		return ""
	}
}
