package envcors

import (
	"context"
	"net/http"
)

// A Response is the outbound side of an exchange, as far as a [Cors] is
// concerned: setting a response header is its only externally observable
// effect.
type Response interface {
	SetHeader(name, value string)
}

// ResponseHeaders adapts w to the [Response] interface.
// It returns nil if w is nil.
func ResponseHeaders(w http.ResponseWriter) Response {
	if w == nil {
		return nil
	}
	return headerSink(w.Header())
}

type headerSink http.Header

func (s headerSink) SetHeader(name, value string) {
	http.Header(s).Set(name, value)
}

// A Session binds a request to the response being composed for it.
type Session struct {
	Request  *http.Request
	Response Response
}

// Context returns the context of s's request, or [context.Background]
// if s has no request.
func (s *Session) Context() context.Context {
	if s == nil || s.Request == nil {
		return context.Background()
	}
	return s.Request.Context()
}
