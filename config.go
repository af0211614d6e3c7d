package envcors

import (
	"net/http"
	"strconv"

	"github.com/mohamedibrahim54/envcors/internal/headers"
	"github.com/mohamedibrahim54/envcors/internal/util"
)

// Wildcard is the origin that stands for any origin.
// Note that a Cors never writes it in the Access-Control-Allow-Origin header;
// it reflects the request's origin instead, which remains compatible with
// credentialed requests.
const Wildcard = headers.ValueWildcard

// Values advertised in responses to preflight requests
// when neither the [Config] nor the [Factory] override them.
const (
	DefaultAllowMethods = http.MethodGet + headers.ValueSep +
		http.MethodHead + headers.ValueSep +
		http.MethodOptions
	DefaultAllowHeaders = headers.Origin + headers.ValueSep +
		"Accept" + headers.ValueSep +
		headers.XRequestedWith + headers.ValueSep +
		"Content-Type" + headers.ValueSep +
		headers.ACRM + headers.ValueSep +
		headers.ACRH + headers.ValueSep +
		headers.DPoP
	DefaultMaxAge = 3600 // in seconds
)

// maxMaxAge is the largest max-age value a Factory accepts.
// Modern browsers cap the max-age value anyway; see
// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Access-Control-Max-Age#delta-seconds.
const maxMaxAge = 86_400

// A Config is the CORS configuration of a single request/response exchange.
// It is normally accumulated by a [Cors], but it can also be built directly
// and passed to [Decide].
//
// # Origins
//
// Origins lists the origins allowed to access the resource;
// [Wildcard] allows any origin.
// A nil Origins means that no origin policy was configured, in which case
// CORS requests other than preflight requests are rejected;
// a non-nil but empty Origins is a policy that allows no origin.
//
// Whenever Origins contains [Wildcard] and the environment lists at least
// one origin, the wildcard is replaced by the origins listed in the
// environment; see [EnvOrigins].
//
// # Methods
//
// Methods lists the methods advertised in responses to preflight requests.
// A nil Methods advertises [DefaultAllowMethods] (or the factory's defaults);
// a non-nil but empty Methods advertises an empty list.
//
// # ExposedHeaders
//
// ExposedHeaders lists the response headers exposed to clients in responses
// to actual (i.e. non-preflight) requests. No Access-Control-Expose-Headers
// header is written when ExposedHeaders is empty.
type Config struct {
	// Preflight reports whether the exchange is a CORS-preflight exchange.
	Preflight bool
	// Auth reports whether the exchange is authenticated.
	Auth           bool
	Origins        []string
	Methods        []string
	ExposedHeaders []string
}

// clone returns a deep copy of cfg that preserves the distinction between
// nil and empty slices.
func (cfg *Config) clone() Config {
	return Config{
		Preflight:      cfg.Preflight,
		Auth:           cfg.Auth,
		Origins:        cloneNilable(cfg.Origins),
		Methods:        cloneNilable(cfg.Methods),
		ExposedHeaders: cloneNilable(cfg.ExposedHeaders),
	}
}

func cloneNilable(s []string) []string {
	if s == nil {
		return nil
	}
	res := make([]string, len(s))
	copy(res, s)
	return res
}

// dedupe returns the elements of s, without duplicates,
// in order of first occurrence. The result is never nil.
func dedupe(s []string) []string {
	return util.NewSet(s...).ToSlice()
}

// defaults holds the precomputed values of preflight-only response headers
// used when a Config leaves them unspecified.
type defaults struct {
	acam     string // methods
	acah     string // request headers
	acahAuth string // request headers, plus Authorization
	acma     string // max age
}

func newDefaults(methods, reqHdrs []string, maxAge int) *defaults {
	acah := headers.Join(reqHdrs)
	acahAuth := headers.Authorization
	if acah != "" {
		acahAuth = acah + headers.ValueSep + headers.Authorization
	}
	return &defaults{
		acam:     headers.Join(methods),
		acah:     acah,
		acahAuth: acahAuth,
		acma:     strconv.Itoa(maxAge),
	}
}

var builtinDefaults = &defaults{
	acam:     DefaultAllowMethods,
	acah:     DefaultAllowHeaders,
	acahAuth: DefaultAllowHeaders + headers.ValueSep + headers.Authorization,
	acma:     strconv.Itoa(DefaultMaxAge),
}

// Decide decides, in accordance with cfg, whether and which CORS response
// headers should be written in response to a request whose headers are
// reqHdrs. A nil cfg is equivalent to a zero Config.
// Decide has no side effects; in particular, it calls env (if
// non-nil) at most once, and only if cfg.Origins contains [Wildcard].
// Decide uses [DefaultAllowMethods], [DefaultAllowHeaders], and
// [DefaultMaxAge] as defaults.
func Decide(cfg *Config, reqHdrs http.Header, env EnvLookup) Decision {
	return builtinDefaults.decide(cfg, reqHdrs, env)
}

func (d *defaults) decide(cfg *Config, reqHdrs http.Header, env EnvLookup) Decision {
	if cfg == nil {
		cfg = new(Config)
	}
	origin, found := headers.First(reqHdrs, headers.Origin)
	if !found {
		// not a CORS request;
		// see https://fetch.spec.whatwg.org/#cors-request.
		return Decision{Outcome: SkippedNoOriginHeader}
	}
	dec := Decision{Origin: origin}

	var allowed *util.Set // nil <=> no origin policy
	if cfg.Origins != nil {
		allowed = util.NewSet(cfg.Origins...)
		if allowed.Contains(Wildcard) && env != nil {
			if envOrigins := env(); len(envOrigins) > 0 {
				allowed.Remove(Wildcard)
				for _, o := range envOrigins {
					allowed.Add(o)
				}
				dec.Narrowed = true
			}
		}
		dec.Allowed = allowed.ToSlice()
	}

	// Preflight requests bypass the origin check: the host only marks an
	// exchange as preflight once it has routed it to a CORS-aware endpoint.
	if !cfg.Preflight {
		if allowed == nil {
			dec.Outcome = RejectedNoPolicy
			return dec
		}
		if !allowed.Contains(origin) && !allowed.Contains(Wildcard) {
			dec.Outcome = RejectedOriginMismatch
			return dec
		}
	}
	dec.Outcome = Accepted

	const maxHeaders = 5
	dec.Headers = make([]Header, 0, maxHeaders)
	dec.Headers = append(dec.Headers,
		Header{Name: headers.ACAO, Value: origin},
		Header{Name: headers.ACAC, Value: headers.Credentials(cfg.Auth)},
	)
	if cfg.Preflight {
		acam := d.acam
		if cfg.Methods != nil {
			acam = headers.Join(cfg.Methods)
		}
		acah := d.acah
		if cfg.Auth {
			acah = d.acahAuth
		}
		dec.Headers = append(dec.Headers,
			Header{Name: headers.ACAM, Value: acam},
			Header{Name: headers.ACAH, Value: acah},
			Header{Name: headers.ACMA, Value: d.acma},
		)
		return dec
	}
	if len(cfg.ExposedHeaders) > 0 {
		dec.Headers = append(dec.Headers,
			Header{Name: headers.ACEH, Value: headers.Join(cfg.ExposedHeaders)},
		)
	}
	return dec
}
