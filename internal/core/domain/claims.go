package domain

// Token kinds. A refresh token is never accepted where an access token is
// expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the decoded payload of a verified token. JSON field names are part
// of the wire contract and must stay bit-exact with tokens already in
// circulation.
type Claims struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Type     string   `json:"type,omitempty"`
	IssuedAt int64    `json:"iat"`
	Expiry   int64    `json:"exp"`
}
