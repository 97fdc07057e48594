// Package correlation implements C12's correlation-id propagation:
// extract X-Correlation-ID on ingress if present and valid, else
// generate "{PREFIX}_{yyyymmddhhmmss}_{8hex}"; attach to context so every
// downstream component (logs, outbound provider calls, usage records)
// can read it back out.
//
// Modeled on the teacher's pkg/telemetry correlation-context pattern.
package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

type contextKey struct{}

var ctxKey = contextKey{}

// HeaderName is the ingress/egress HTTP header carrying the correlation id.
const HeaderName = "X-Correlation-ID"

// DefaultPrefix is used when the caller doesn't specify one.
const DefaultPrefix = "req"

// validPattern matches both client-supplied ids (reasonably permissive:
// 6-128 chars of [A-Za-z0-9_-]) and our own generated format.
var validPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,128}$`)

// IsValid reports whether id is syntactically acceptable as a correlation
// id (spec §4.12: "read X-Correlation-ID if present and syntactically
// valid").
func IsValid(id string) bool {
	return validPattern.MatchString(id)
}

// Generate produces a new correlation id in the
// "{PREFIX}_{yyyymmddhhmmss}_{8hex}" format mandated by spec §4.12.
func Generate(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	ts := time.Now().UTC().Format("20060102150405")
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%s_%s_%s", prefix, ts, hex.EncodeToString(b[:]))
}

// Resolve returns the client-supplied id if valid, otherwise a freshly
// generated one. This is the single admission-time entry point.
func Resolve(prefix, clientSupplied string) string {
	if clientSupplied != "" && IsValid(clientSupplied) {
		return clientSupplied
	}
	return Generate(prefix)
}

// WithID attaches id to ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey, id)
}

// FromContext reads the correlation id previously attached with WithID,
// returning "" if none is present.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey).(string); ok {
		return v
	}
	return ""
}
