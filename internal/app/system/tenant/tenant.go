// internal/app/system/tenant/tenant.go

// Package tenant resolves which organization a request claims to act on.
//
// Clients send the org id in one of several shapes: as a top-level orgId
// field of the JSON payload, nested one level under a "json" envelope
// (clients that wrap input in a serialization envelope), or not at all
// when the session has an org already bound. Resolution is an ordered
// list of named strategies tried in sequence; each strategy is total and
// side-effect-free. Ambiguity is an error; the resolver never guesses a
// default org, since silently picking one risks leaking data into the
// wrong tenant's operation.
package tenant

import "errors"

// ErrMissingOrgContext is returned when no strategy yields an org id.
// It signals a malformed request (a well-formed client always supplies
// the org), surfaced as a bad request rather than an authorization error.
var ErrMissingOrgContext = errors.New("organization id is required")

// FieldOrgID is the payload field carrying the target organization id.
const FieldOrgID = "orgId"

// EnvelopeKey is the transformation envelope some clients nest their
// payload under.
const EnvelopeKey = "json"

// Strategy extracts an org id from a request payload or the bound
// session org. It returns ok=false when it has nothing to say; it never
// errors and never mutates its inputs.
type Strategy struct {
	Name    string
	Extract func(payload map[string]any, bound string) (string, bool)
}

// Strategies is the resolution order. Payload fields win over the bound
// session org so an explicit request target is never overridden by stale
// session state.
var Strategies = []Strategy{
	{Name: "top-level", Extract: fromTopLevel},
	{Name: "envelope", Extract: fromEnvelope},
	{Name: "bound-session", Extract: fromBound},
}

// Resolve returns the org id the request acts on, or ErrMissingOrgContext.
func Resolve(payload map[string]any, bound string) (string, error) {
	for _, s := range Strategies {
		if id, ok := s.Extract(payload, bound); ok {
			return id, nil
		}
	}
	return "", ErrMissingOrgContext
}

func fromTopLevel(payload map[string]any, _ string) (string, bool) {
	return stringField(payload, FieldOrgID)
}

func fromEnvelope(payload map[string]any, _ string) (string, bool) {
	inner, ok := payload[EnvelopeKey].(map[string]any)
	if !ok {
		return "", false
	}
	return stringField(inner, FieldOrgID)
}

func fromBound(_ map[string]any, bound string) (string, bool) {
	if bound == "" {
		return "", false
	}
	return bound, true
}

// stringField reads a non-empty string value; any other type (null,
// number, object) is treated as absent rather than an error.
func stringField(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
