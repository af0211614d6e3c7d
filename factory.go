package envcors

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mohamedibrahim54/envcors/cfgerrors"
	"github.com/mohamedibrahim54/envcors/internal/headers"
	"github.com/mohamedibrahim54/envcors/internal/methods"
	"github.com/mohamedibrahim54/envcors/internal/origins"
	"github.com/mohamedibrahim54/envcors/internal/util"
)

// ProviderID is the identifier under which the default [Factory] is
// registered; see [Lookup].
const ProviderID = "env-cors"

// A CorsFactory creates the [Cors] of each exchange.
type CorsFactory interface {
	ID() string
	Create(sess *Session) *Cors
	Init(scope Scope) error
	Close() error
}

// A Scope gives access to a factory's section of the host's configuration.
// *[github.com/spf13/viper.Viper] satisfies this interface.
type Scope interface {
	IsSet(key string) bool
	GetString(key string) string
	GetStringSlice(key string) []string
	GetInt(key string) int
}

// Configuration keys read by [Factory.Init].
const (
	KeyEnvVar       = "env-var"
	KeyAllowMethods = "allow-methods"
	KeyAllowHeaders = "allow-headers"
	KeyMaxAge       = "max-age"
)

// A Factory creates [Cors] values that share a logger, an environment lookup,
// an origin resolver, metrics, and the defaults advertised in responses to
// preflight requests.
// The zero value is a ready-to-use Factory with default settings.
// A Factory is safe for concurrent use by multiple goroutines.
type Factory struct {
	_        [0]func() // precludes comparability
	settings atomic.Pointer[settings]
}

// settings is immutable once published.
type settings struct {
	log      *zap.Logger
	env      EnvLookup
	resolver OriginResolver
	metrics  *Metrics
	methods  []string
	headers  []string
	maxAge   int
	defaults *defaults
}

// An Option configures a [Factory].
type Option func(*settings) error

// WithLogger makes the factory log to log.
// The default logger discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) error {
		if log != nil {
			s.log = log
		}
		return nil
	}
}

// WithEnvLookup makes the factory read the origins that replace the wildcard
// origin from env. The default is EnvOrigins(EnvAllowOrigins).
func WithEnvLookup(env EnvLookup) Option {
	return func(s *settings) error {
		s.env = env
		return nil
	}
}

// WithEnvVar makes the factory read the origins that replace the wildcard
// origin from the environment variable named name.
func WithEnvVar(name string) Option {
	return func(s *settings) error {
		if err := validateEnvVarName(name); err != nil {
			return err
		}
		s.env = EnvOrigins(name)
		return nil
	}
}

// WithOriginResolver makes the factory resolve client origins with r.
// The default is [WebOriginsResolver].
func WithOriginResolver(r OriginResolver) Option {
	return func(s *settings) error {
		if r != nil {
			s.resolver = r
		}
		return nil
	}
}

// WithMetrics makes the factory count its decisions in m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) error {
		s.metrics = m
		return nil
	}
}

// WithDefaultMethods sets the methods advertised in responses to preflight
// requests whose [Cors] does not specify any. Methods must be valid and not
// forbidden by the Fetch standard (CONNECT, TRACE, TRACK); otherwise the
// resulting error joins *[cfgerrors.UnacceptableMethodError] values.
// The default is [DefaultAllowMethods].
func WithDefaultMethods(names ...string) Option {
	return func(s *settings) error {
		if err := validateMethods(names); err != nil {
			return err
		}
		s.methods = dedupe(names)
		return nil
	}
}

// WithDefaultHeaders sets the request headers advertised in responses to
// preflight requests, before the Authorization header gets appended for
// authenticated exchanges. Names must be valid and not be CORS response-header
// names; otherwise the resulting error joins
// *[cfgerrors.UnacceptableHeaderNameError] values.
// The default is [DefaultAllowHeaders].
func WithDefaultHeaders(names ...string) Option {
	return func(s *settings) error {
		if err := validateHeaderNames(names); err != nil {
			return err
		}
		s.headers = dedupe(names)
		return nil
	}
}

// WithMaxAge sets the value, in seconds, of the Access-Control-Max-Age header
// of responses to preflight requests. It must lie between 0 and 86400
// inclusive; otherwise the resulting error is a
// *[cfgerrors.MaxAgeOutOfBoundsError]. The default is [DefaultMaxAge].
func WithMaxAge(delta int) Option {
	return func(s *settings) error {
		if err := validateMaxAge(delta); err != nil {
			return err
		}
		s.maxAge = delta
		return nil
	}
}

// NewFactory creates a Factory configured by opts.
// If some options are unacceptable, NewFactory returns a nil *Factory and
// an error that joins one error per configuration issue;
// see [cfgerrors.All].
func NewFactory(opts ...Option) (*Factory, error) {
	s := newSettings()
	var errs []error
	for _, opt := range opts {
		if err := opt(s); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}
	s.defaults = newDefaults(s.methods, s.headers, s.maxAge)
	var f Factory
	f.settings.Store(s)
	return &f, nil
}

func newSettings() *settings {
	return &settings{
		log:      zap.NewNop(),
		env:      EnvOrigins(EnvAllowOrigins),
		resolver: WebOriginsResolver{},
		methods:  splitList(DefaultAllowMethods),
		headers:  splitList(DefaultAllowHeaders),
		maxAge:   DefaultMaxAge,
		defaults: builtinDefaults,
	}
}

// zeroSettings are the settings of the zero Factory.
var zeroSettings = newSettings()

func (f *Factory) load() *settings {
	if s := f.settings.Load(); s != nil {
		return s
	}
	return zeroSettings
}

// Logger returns the logger f's [Cors] values log to.
func (f *Factory) Logger() *zap.Logger {
	return f.load().log
}

// ID returns [ProviderID].
func (*Factory) ID() string {
	return ProviderID
}

// Create returns a new [Cors] bound to sess.
// The Cors uses f's settings as of the time of the call.
func (f *Factory) Create(sess *Session) *Cors {
	return &Cors{
		settings: f.load(),
		session:  sess,
	}
}

// Init reconfigures f from scope; see the Key constants.
// Keys that scope does not set leave the corresponding settings unchanged.
// If some values are unacceptable, Init leaves f unchanged and returns an
// error that joins one error per configuration issue.
func (f *Factory) Init(scope Scope) error {
	next := *f.load()
	var errs []error
	if scope.IsSet(KeyEnvVar) {
		name := scope.GetString(KeyEnvVar)
		if err := validateEnvVarName(name); err != nil {
			errs = append(errs, err)
		} else {
			next.env = EnvOrigins(name)
		}
	}
	if scope.IsSet(KeyAllowMethods) {
		names := scope.GetStringSlice(KeyAllowMethods)
		if err := validateMethods(names); err != nil {
			errs = append(errs, err)
		} else {
			next.methods = dedupe(names)
		}
	}
	if scope.IsSet(KeyAllowHeaders) {
		names := scope.GetStringSlice(KeyAllowHeaders)
		if err := validateHeaderNames(names); err != nil {
			errs = append(errs, err)
		} else {
			next.headers = dedupe(names)
		}
	}
	if scope.IsSet(KeyMaxAge) {
		delta := scope.GetInt(KeyMaxAge)
		if err := validateMaxAge(delta); err != nil {
			errs = append(errs, err)
		} else {
			next.maxAge = delta
		}
	}
	if len(errs) != 0 {
		return errors.Join(errs...)
	}
	next.defaults = newDefaults(next.methods, next.headers, next.maxAge)
	f.settings.Store(&next)
	next.log.Debug("cors provider initialized",
		zap.String("provider", ProviderID),
		zap.Strings("methods", next.methods),
		zap.Strings("headers", next.headers),
		zap.Int("max_age", next.maxAge))
	return nil
}

// Close releases the resources held by f, of which there are none.
// Close always returns nil.
func (*Factory) Close() error {
	return nil
}

// envOrigins reads the environment and warns about the origins that no
// browser would send or that are deemed insecure; such origins are kept
// nonetheless.
func (s *settings) envOrigins() []string {
	if s.env == nil {
		return nil
	}
	list := s.env()
	for _, raw := range list {
		o, err := origins.Parse(raw)
		if err != nil {
			s.log.Warn("unusable origin in environment", zap.Error(err))
			continue
		}
		if o.IsDeemedInsecure() {
			s.log.Warn("insecure origin in environment", zap.String("origin", raw))
		}
	}
	return list
}

func validateMethods(names []string) error {
	var errs []error
	for _, name := range names {
		switch {
		case !methods.IsValid(name):
			errs = append(errs, &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "invalid",
			})
		case methods.IsForbidden(name):
			errs = append(errs, &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "forbidden",
			})
		}
	}
	return errors.Join(errs...)
}

func validateHeaderNames(names []string) error {
	var errs []error
	for _, name := range names {
		switch {
		case !headers.IsValid(name):
			errs = append(errs, &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Reason: "invalid",
			})
		case headers.IsProhibitedRequestHeaderName(util.ByteLowercase(name)):
			errs = append(errs, &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Reason: "prohibited",
			})
		}
	}
	return errors.Join(errs...)
}

func validateMaxAge(delta int) error {
	if delta < 0 || maxMaxAge < delta {
		return &cfgerrors.MaxAgeOutOfBoundsError{
			Value: delta,
			Max:   maxMaxAge,
		}
	}
	return nil
}
