package middleware

import "strings"

// Header names used by the affinity exchange. Lower-case, the way RPC
// metadata keys arrive.
const (
	CookieHeader    = "cookie"
	SetCookieHeader = "set-cookie"
)

// CallHeaders is a read-only view of a call's inbound headers, as exposed
// by the transport. A header field may occur multiple times; Values returns
// every occurrence in arrival order. Lookup is case-insensitive.
type CallHeaders interface {
	Values(name string) []string
}

// HeaderWriter receives outbound headers for the response.
type HeaderWriter interface {
	Add(name, value string)
}

// Header is a map-backed implementation of CallHeaders and HeaderWriter,
// in the shape RPC metadata uses: lower-case keys, repeated values.
type Header map[string][]string

// Values implements CallHeaders.
func (h Header) Values(name string) []string {
	return h[strings.ToLower(name)]
}

// Add implements HeaderWriter.
func (h Header) Add(name, value string) {
	name = strings.ToLower(name)
	h[name] = append(h[name], value)
}
