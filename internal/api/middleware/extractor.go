package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// Token carriers are tried in this fixed priority order:
//
//  1. Authorization header, Bearer scheme (or the raw header value for
//     legacy clients that send the token without a scheme)
//  2. X-Auth-Token, X-Token, Token headers
//  3. token query parameter
//  4. token field in a JSON or form-encoded body
//  5. token cookie
//
// Absence is a normal outcome and yields an empty string, not an error.
var bearerPattern = regexp.MustCompile(`(?i)Bearer\s+(\S+)`)

var altTokenHeaders = []string{"X-Auth-Token", "X-Token", "Token"}

// maxTokenBodyBytes bounds how much of the body is read while looking for a
// token field.
const maxTokenBodyBytes = 64 << 10

// ExtractToken locates a bearer token in the request, checking each carrier
// in priority order and returning on the first hit.
func ExtractToken(c echo.Context) string {
	req := c.Request()

	if auth := req.Header.Get(echo.HeaderAuthorization); auth != "" {
		if m := bearerPattern.FindStringSubmatch(auth); m != nil {
			return strings.TrimSpace(m[1])
		}
		// Legacy clients send the bare token in the Authorization header.
		if trimmed := strings.TrimSpace(auth); trimmed != "" {
			return trimmed
		}
	}

	for _, h := range altTokenHeaders {
		if v := strings.TrimSpace(req.Header.Get(h)); v != "" {
			return v
		}
	}

	if v := strings.TrimSpace(c.QueryParam("token")); v != "" {
		return v
	}

	if v := tokenFromBody(req); v != "" {
		return v
	}

	if cookie, err := c.Cookie("token"); err == nil {
		if v := strings.TrimSpace(cookie.Value); v != "" {
			return v
		}
	}

	return ""
}

// tokenFromBody reads a bounded prefix of the body and tries a JSON parse,
// then a form-urlencoded parse. The consumed bytes are stitched back so later
// binding still sees the full body.
func tokenFromBody(req *http.Request) string {
	if req.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(req.Body, maxTokenBodyBytes))
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), req.Body), req.Body}
	if err != nil || len(raw) == 0 {
		return ""
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Token != "" {
		return strings.TrimSpace(parsed.Token)
	}

	if values, err := url.ParseQuery(string(raw)); err == nil {
		if v := strings.TrimSpace(values.Get("token")); v != "" {
			return v
		}
	}
	return ""
}
