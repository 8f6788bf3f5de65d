// Package token implements the compact signed-token wire format used by the
// SIMS API: three URL-safe base64 segments (header, payload, signature) joined
// by dots. The codec is claims-agnostic; interpreting the payload is the
// caller's job.
package token

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMalformed indicates a token that does not have exactly three segments or
// carries undecodable base64 data.
var ErrMalformed = errors.New("malformed token")

// Encode returns the URL-safe base64 form of data: '+' becomes '-', '/'
// becomes '_', and padding is stripped.
func Encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode reverses Encode. Input with standard-alphabet characters or padding
// already present is tolerated, matching tokens issued by older backends.
func Decode(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "+", "-")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.TrimRight(s, "=")

	out, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrMalformed
	}
	return out, nil
}

// Split breaks a token into its header, payload, and signature segments.
// Anything other than exactly three dot-separated segments is malformed.
func Split(tok string) (header, payload, signature string, err error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", "", "", ErrMalformed
	}
	return parts[0], parts[1], parts[2], nil
}
