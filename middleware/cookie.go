package middleware

import "strings"

// DefaultCookieName is the reserved cookie key carrying the affinity token.
// Override per factory with WithCookieName.
const DefaultCookieName = "rpc_session_id"

// Cookie is one name=value pair from an affinity header.
type Cookie struct {
	Name  string
	Value string
}

// ParseCookies splits one raw cookie header value into its name/value
// pairs. Tokens are separated by the literal "; "; each token is cut at its
// first "=", so values may themselves contain "=". A token with no "=" is
// somewhat malformed; it is skipped and parsing continues with the rest.
// Token order is preserved.
//
// Callers holding a repeated header must parse each occurrence separately.
func ParseCookies(header string) []Cookie {
	var cookies []Cookie
	for _, tok := range strings.Split(header, "; ") {
		name, value, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		cookies = append(cookies, Cookie{Name: name, Value: value})
	}
	return cookies
}

// FormatSetCookie renders the outbound affinity cookie. No attributes are
// attached; attribute policy belongs to the transport.
func FormatSetCookie(name, value string) string {
	return name + "=" + value
}
