package envcors

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mohamedibrahim54/envcors/internal/headers"
)

// A Middleware applies a CORS provider to the exchanges of a [http.Handler].
// Call its [*Middleware.Wrap] method to apply it to a handler.
//
// The zero value is ready to use but is a mere "passthrough" middleware,
// i.e. a middleware that simply delegates to the handler(s) it wraps.
//
// Middleware are safe for concurrent use by multiple goroutines
// as long as their configure function is.
type Middleware struct {
	factory   CorsFactory
	configure func(*http.Request, *Cors)
}

// NewMiddleware creates a middleware that obtains the [Cors] of each exchange
// from f and lets configure (if non-nil) configure it before its headers are
// added. Configure typically allows some origins, based on the client or
// token the request pertains to, and marks authenticated exchanges;
// the middleware itself marks preflight exchanges.
func NewMiddleware(f CorsFactory, configure func(r *http.Request, c *Cors)) *Middleware {
	return &Middleware{
		factory:   f,
		configure: configure,
	}
}

// Wrap applies the CORS middleware to the specified handler.
// Responses to CORS-preflight requests are completed by the middleware
// (with status 204) and never reach h.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.factory == nil { // passthrough middleware
			h.ServeHTTP(w, r)
			return
		}
		c := m.factory.Create(&Session{
			Request:  r,
			Response: ResponseHeaders(w),
		})
		defer c.Close()
		preflight := isPreflight(r)
		if preflight {
			c.Preflight()
		}
		if m.configure != nil {
			m.configure(r, c)
		}
		if _, err := c.Add(); err != nil {
			m.logger().Error("cannot add CORS headers",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if preflight {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// logger returns the logger of m's factory, if it exposes one.
func (m *Middleware) logger() *zap.Logger {
	if lp, ok := m.factory.(interface{ Logger() *zap.Logger }); ok {
		if log := lp.Logger(); log != nil {
			return log
		}
	}
	return zap.NewNop()
}

// isPreflight reports whether r is a CORS-preflight request;
// see https://fetch.spec.whatwg.org/#cors-preflight-request.
func isPreflight(r *http.Request) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	if _, found := headers.First(r.Header, headers.Origin); !found {
		return false
	}
	_, found := headers.First(r.Header, headers.ACRM)
	return found
}
