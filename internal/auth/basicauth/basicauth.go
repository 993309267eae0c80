// Package basicauth implements the credential gate in front of the import
// API. It validates Basic-scheme credentials against an injected
// username-to-password mapping and produces an explicit Allow or Deny
// decision for a named resource. A missing or unparseable credential is a
// hard failure, distinct from Deny, so the HTTP adapter can answer 401
// rather than 403.
package basicauth

import (
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/catalogops/import-pipeline/pkg/errors"
)

// Effect is the outcome of an authorization decision.
type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// Decision carries the gate's verdict, the principal it applies to, and the
// exact resource the grant covers.
type Decision struct {
	Effect    Effect
	Principal string
	Resource  string
}

// Gate validates credentials against a fixed mapping. It is stateless and
// holds no session between calls.
type Gate struct {
	credentials map[string]string
}

// NewGate creates a Gate over the given username-to-password mapping.
func NewGate(credentials map[string]string) *Gate {
	return &Gate{credentials: credentials}
}

// ParseCredential decodes a "Basic <base64(user:pass)>" credential string.
// Absent, unparseable, or non-Basic input returns ErrMalformedCredential.
func ParseCredential(credential string) (user, pass string, err error) {
	if credential == "" {
		return "", "", apperrors.New(apperrors.ErrMalformedCredential, 401, "credential is missing")
	}
	encoded, ok := strings.CutPrefix(credential, "Basic ")
	if !ok {
		return "", "", apperrors.New(apperrors.ErrMalformedCredential, 401, "credential scheme is not Basic")
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", apperrors.Newf(apperrors.ErrMalformedCredential, 401, "decoding credential: %v", err)
	}
	user, pass, ok = strings.Cut(string(decoded), ":")
	if !ok || user == "" {
		return "", "", apperrors.New(apperrors.ErrMalformedCredential, 401, "credential is not user:pass")
	}
	return user, pass, nil
}

// Authorize parses the credential and checks it against the mapping. The
// returned Decision names the principal and resource; an error is returned
// only for malformed credentials, never for a wrong password.
func (g *Gate) Authorize(credential, resource string) (Decision, error) {
	user, pass, err := ParseCredential(credential)
	if err != nil {
		return Decision{}, fmt.Errorf("authorizing %s: %w", resource, err)
	}

	decision := Decision{Effect: Deny, Principal: user, Resource: resource}
	if expected, ok := g.credentials[user]; ok && expected == pass {
		decision.Effect = Allow
	}
	return decision, nil
}
