package envcors

import (
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/mohamedibrahim54/envcors/internal/util"
)

// ErrIllegalState is the error class of programming errors on the caller's
// part, such as calling [Cors.Add] on a Cors whose session lacks a request
// or a response.
var ErrIllegalState = errs.Class("envcors: illegal state")

type state uint8

const (
	configuring state = iota
	decided
	closed
)

// A Cors accumulates the CORS configuration of a single exchange and then
// writes the corresponding CORS response headers, if any.
// Obtain one from a [CorsFactory]; a Cors must not be shared across
// goroutines or reused across exchanges.
//
// Configuration methods return their receiver so that calls can be chained;
// the "replace" methods obey last-writer-wins and [Cors.ExposedHeaders]
// accumulates. None of them performs I/O.
type Cors struct {
	_        [0]func() // precludes comparability
	settings *settings
	session  *Session
	cfg      Config
	exposed  util.Set
	state    state
}

// Preflight marks the exchange as a CORS-preflight exchange.
func (c *Cors) Preflight() *Cors {
	c.cfg.Preflight = true
	return c
}

// Auth marks the exchange as authenticated.
func (c *Cors) Auth() *Cors {
	c.cfg.Auth = true
	return c
}

// AllowAllOrigins replaces the allowed origins by [Wildcard] alone.
func (c *Cors) AllowAllOrigins() *Cors {
	c.cfg.Origins = []string{Wildcard}
	return c
}

// AllowedOriginsForClient replaces the allowed origins by the Web origins
// registered for client, as resolved by the factory's [OriginResolver].
// It is a no-op if client is nil, including a nil pointer of a type
// that implements [Client].
func (c *Cors) AllowedOriginsForClient(sess *Session, client Client) *Cors {
	if util.IsNil(client) {
		return c
	}
	c.cfg.Origins = dedupe(c.settings.resolver.ResolveWebOrigins(sess, client))
	return c
}

// AllowedOriginsFromToken replaces the allowed origins by those listed in
// token's claims. It is a no-op if token is nil, including a nil pointer
// of a type that implements [Token].
// If token lists no origins at all (as opposed to an empty list),
// no origin policy remains configured.
func (c *Cors) AllowedOriginsFromToken(token Token) *Cors {
	if util.IsNil(token) {
		return c
	}
	origins := token.AllowedOrigins()
	if origins == nil {
		c.cfg.Origins = nil
		return c
	}
	c.cfg.Origins = dedupe(origins)
	return c
}

// AllowedOrigins replaces the allowed origins by origins, without
// duplicates. It is a no-op if origins is empty.
func (c *Cors) AllowedOrigins(origins ...string) *Cors {
	if len(origins) == 0 {
		return c
	}
	c.cfg.Origins = dedupe(origins)
	return c
}

// AllowedMethods replaces the methods advertised in response to preflight
// requests by methods, even if methods is empty.
func (c *Cors) AllowedMethods(methods ...string) *Cors {
	c.cfg.Methods = dedupe(methods)
	return c
}

// ExposedHeaders adds names to the response headers exposed to clients.
// Names keep the order of their first occurrence.
func (c *Cors) ExposedHeaders(names ...string) *Cors {
	for _, name := range names {
		c.exposed.Add(name)
	}
	c.cfg.ExposedHeaders = c.exposed.ToSlice()
	return c
}

// Config returns a copy of the configuration accumulated so far.
func (c *Cors) Config() Config {
	return c.cfg.clone()
}

// Add decides whether the exchange is an acceptable CORS exchange and,
// if so, writes the corresponding CORS headers to the session's response.
// Add must be called once per Cors.
//
// Rejections are not errors: Add then writes no headers and reports the
// reason in the resulting [Decision]. Add only ever fails, with an error of
// class [ErrIllegalState], if the session lacks a request or a response, or
// if Add was already called or c was closed.
func (c *Cors) Add() (Decision, error) {
	switch c.state {
	case decided:
		return Decision{}, ErrIllegalState.New("headers already added")
	case closed:
		return Decision{}, ErrIllegalState.New("cors closed")
	}
	if c.session == nil || c.session.Request == nil {
		return Decision{}, ErrIllegalState.New("no request bound")
	}
	if c.session.Response == nil {
		return Decision{}, ErrIllegalState.New("no response bound")
	}
	c.state = decided

	s := c.settings
	dec := s.defaults.decide(&c.cfg, c.session.Request.Header, s.envOrigins)
	s.metrics.observe(&dec, c.cfg.Preflight)

	log := s.log
	switch dec.Outcome {
	case SkippedNoOriginHeader:
		log.Debug("no Origin header, ignoring")
		return dec, nil
	case RejectedNoPolicy:
		log.Debug("invalid CORS request: no allowed origins configured",
			zap.String("origin", dec.Origin))
		return dec, nil
	case RejectedOriginMismatch:
		log.Debug("invalid CORS request: origin not in allowed origins",
			zap.String("origin", dec.Origin),
			zap.Strings("allowed", dec.Allowed))
		return dec, nil
	}
	if dec.Narrowed {
		log.Debug("wildcard origin replaced by environment origins",
			zap.Strings("allowed", dec.Allowed))
	}
	dec.WriteTo(c.session.Response)
	return dec, nil
}

// Close releases the resources held by c, of which there are none.
// Close always returns nil.
func (c *Cors) Close() error {
	c.state = closed
	return nil
}
