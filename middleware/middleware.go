// Package middleware binds stateless RPC calls to server-side sessions via
// an opaque cookie-carried affinity token. A Factory inspects each inbound
// call's headers and produces a short-lived, per-call Middleware through
// which handlers reach the call's session.
package middleware

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/creastat/rpcsession"
	"github.com/creastat/rpcsession/session"
)

// Factory resolves inbound affinity cookies against a session registry and
// produces the per-call middleware. One factory serves all calls.
type Factory struct {
	registry   session.Registry
	cookieName string
	logger     zerolog.Logger
}

// FactoryOption is a functional option for configuring a Factory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	cookieName string
	logger     zerolog.Logger
}

// WithCookieName overrides the reserved cookie key. Defaults to
// DefaultCookieName.
func WithCookieName(name string) FactoryOption {
	return func(c *factoryConfig) {
		c.cookieName = name
	}
}

// WithLogger sets the logger for call-rejection events. Defaults to a
// no-op logger.
func WithLogger(logger zerolog.Logger) FactoryOption {
	return func(c *factoryConfig) {
		c.logger = logger
	}
}

// NewFactory creates a Factory backed by registry.
func NewFactory(registry session.Registry, opts ...FactoryOption) (*Factory, error) {
	if registry == nil {
		return nil, rpcsession.ErrInvalidConfig
	}

	config := &factoryConfig{
		cookieName: DefaultCookieName,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.cookieName == "" {
		return nil, rpcsession.ErrInvalidConfig
	}

	return &Factory{
		registry:   registry,
		cookieName: config.cookieName,
		logger:     config.logger,
	}, nil
}

// CookieName returns the reserved cookie key this factory scans for.
func (f *Factory) CookieName() string {
	return f.cookieName
}

// StartCall runs once per inbound call, before business logic. It scans the
// call's cookie headers for the affinity token and returns the per-call
// middleware:
//
//   - no affinity cookie: an unbound middleware; a session is created only
//     if the handler asks for one.
//   - a known token: a middleware bound to the existing session.
//   - an empty token value: the call is rejected with ErrEmptyToken.
//   - an unknown token: the call is rejected with ErrUnknownToken.
//
// A rejected call never reaches handler logic and gets no middleware.
func (f *Factory) StartCall(headers CallHeaders) (*Middleware, error) {
	token, err := f.findToken(headers)
	if err != nil {
		f.logger.Warn().Err(err).Msg("call rejected")
		return nil, err
	}

	if token == "" {
		return &Middleware{factory: f, headers: headers}, nil
	}

	sess, err := f.registry.Lookup(token)
	if err != nil {
		err = fmt.Errorf("%s cookie: %w", f.cookieName, rpcsession.ErrUnknownToken)
		f.logger.Warn().Err(err).Msg("call rejected")
		return nil, err
	}

	return &Middleware{
		factory:     f,
		headers:     headers,
		session:     sess,
		token:       token,
		preExisting: true,
	}, nil
}

// findToken scans every occurrence of the cookie header for the affinity
// key. The first occurrence yielding a match wins; within an occurrence,
// scanning stops at the first match. A match with an empty value is fatal.
func (f *Factory) findToken(headers CallHeaders) (string, error) {
	for _, header := range headers.Values(CookieHeader) {
		for _, cookie := range ParseCookies(header) {
			if cookie.Name != f.cookieName {
				continue
			}
			if cookie.Value == "" {
				return "", fmt.Errorf("%s cookie: %w", f.cookieName, rpcsession.ErrEmptyToken)
			}
			return cookie.Value, nil
		}
	}
	return "", nil
}

// Middleware is the per-call interception unit. It lives for one call: the
// transport obtains it from Factory.StartCall, handlers reach the session
// through it, and SendingHeaders runs once before the response goes out.
//
// A Middleware is not safe for concurrent use; each call runs as one
// logical task.
type Middleware struct {
	factory     *Factory
	headers     CallHeaders // borrowed for the call's duration
	session     *session.Session
	token       string
	preExisting bool
}

// GetSession returns the call's session, creating and registering one on
// first use. Repeated calls return the same session.
func (m *Middleware) GetSession() (*session.Session, error) {
	if m.session == nil {
		token, sess, err := m.factory.registry.Create()
		if err != nil {
			return nil, err
		}
		m.session = sess
		m.token = token
	}
	return m.session, nil
}

// HasSession reports whether a session is bound to this call. Unlike
// GetSession it never allocates one.
func (m *Middleware) HasSession() bool {
	return m.session != nil
}

// Token returns the affinity token of the bound session, or "" when no
// session is bound.
func (m *Middleware) Token() string {
	return m.token
}

// PreExisting reports whether the bound session was resolved from an
// inbound cookie rather than created during this call.
func (m *Middleware) PreExisting() bool {
	return m.preExisting
}

// CallHeaders returns the call's inbound headers, read-only.
func (m *Middleware) CallHeaders() CallHeaders {
	return m.headers
}

// SendingHeaders runs once after the handler completes, before the response
// is sent. It emits the affinity cookie only for a session created during
// this call; a client that presented the token already holds it.
func (m *Middleware) SendingHeaders(add HeaderWriter) {
	if m.session != nil && !m.preExisting {
		add.Add(SetCookieHeader, FormatSetCookie(m.factory.cookieName, m.token))
	}
}

// CallCompleted runs after the response is sent. The subsystem itself holds
// nothing per call worth releasing; the hook exists for the transport's
// interception contract.
func (m *Middleware) CallCompleted(error) {}
