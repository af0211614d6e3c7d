/*
Package cfgerrors provides functionalities for programmatically handling
configuration errors produced by package [github.com/mohamedibrahim54/envcors].

Most users of package [github.com/mohamedibrahim54/envcors] have no use for
this package. However, hosts that let operators configure the CORS provider
(e.g. via a configuration file or some command-line interface) may find this
package useful: it indeed allows them to report each configuration mistake
separately and in their own words.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An UnacceptableOriginError indicates an unacceptable origin.
// The Reason field may take one of two values:
//   - "invalid": the origin is not in ASCII serialized form;
//   - "prohibited": the origin is valid but prohibited by this library
//     (e.g. the null origin or an origin with an explicit default port).
//
// Origins listed in the environment are never rejected outright; such errors
// are only ever logged.
type UnacceptableOriginError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | prohibited
}

func (err *UnacceptableOriginError) Error() string {
	const tmpl = "envcors: %s origin %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableMethodError indicates an unacceptable method.
// The Reason field may take one of two values:
//   - "invalid": the method is invalid;
//   - "forbidden": the method is forbidden by [the Fetch standard].
//
// For more details, see [github.com/mohamedibrahim54/envcors.WithDefaultMethods].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptableMethodError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | forbidden
}

func (err *UnacceptableMethodError) Error() string {
	const tmpl = "envcors: %s method %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableHeaderNameError indicates an unacceptable request-header name.
// The Reason field may take one of two values:
//   - "invalid": the header name is invalid;
//   - "prohibited": the header name is prohibited by this library.
//
// For more details, see [github.com/mohamedibrahim54/envcors.WithDefaultHeaders].
type UnacceptableHeaderNameError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | prohibited
}

func (err *UnacceptableHeaderNameError) Error() string {
	const tmpl = "envcors: %s request-header name %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// A MaxAgeOutOfBoundsError indicates a max-age value that's either negative
// or too high.
//
// For more details, see [github.com/mohamedibrahim54/envcors.WithMaxAge].
type MaxAgeOutOfBoundsError struct {
	Value int // the unacceptable value that was specified
	Max   int // maximum max-age value permitted by this library
}

func (err *MaxAgeOutOfBoundsError) Error() string {
	const tmpl = "envcors: out-of-bounds max-age value %d (min: 0; max: %d)"
	return fmt.Sprintf(tmpl, err.Value, err.Max)
}

// An InvalidEnvVarNameError indicates an environment-variable name that
// cannot be looked up, i.e. one that is empty or contains an equals sign
// or a NUL byte.
//
// For more details, see [github.com/mohamedibrahim54/envcors.EnvOrigins].
type InvalidEnvVarNameError struct {
	Value string // the unacceptable value that was specified
}

func (err *InvalidEnvVarNameError) Error() string {
	const tmpl = "envcors: invalid environment-variable name %q"
	return fmt.Sprintf(tmpl, err.Value)
}

// All returns an iterator over the configuration errors contained in
// err's error tree. The order is unspecified and may change from one release
// to the next. All only supports error values returned by
// [github.com/mohamedibrahim54/envcors.NewFactory] and
// [github.com/mohamedibrahim54/envcors.Factory.Init]; it should not be called
// on any other error value.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		every(err, yield)
	}
}

func every(err error, f func(error) bool) bool {
	switch err := err.(type) {
	// Note that there's no need for any "interface { Unwrap() error }" case
	// because nowhere do we "wrap" errors; we only ever "join" them.
	case interface{ Unwrap() []error }:
		for _, err := range err.Unwrap() {
			if !every(err, f) {
				return false
			}
		}
		return true
	default:
		return f(err)
	}
}
