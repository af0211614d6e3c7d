package envcors

import (
	"errors"
	"os"
	"strings"

	"github.com/mohamedibrahim54/envcors/cfgerrors"
	"github.com/mohamedibrahim54/envcors/internal/origins"
)

// EnvAllowOrigins is the name of the environment variable that, by default,
// lists the origins that replace the wildcard origin.
const EnvAllowOrigins = "CORS_ALLOW_ORIGINS"

// An EnvLookup returns the origins currently listed in the environment.
// An empty result means that the environment does not override the
// wildcard origin.
type EnvLookup func() []string

// EnvOrigins returns an [EnvLookup] that reads and parses the environment
// variable named name (see [ParseOrigins]) anew on each call, so that
// changes to the variable take effect without a restart.
func EnvOrigins(name string) EnvLookup {
	return func() []string {
		return ParseOrigins(os.Getenv(name))
	}
}

// StaticOrigins returns an [EnvLookup] that always returns a copy of
// origins.
func StaticOrigins(origins ...string) EnvLookup {
	origins = cloneNilable(origins)
	return func() []string {
		return cloneNilable(origins)
	}
}

// ParseOrigins parses a comma-separated list of origins.
// Elements are trimmed of surrounding whitespace and empty elements are
// dropped; a blank list yields an empty (nil) result.
// ParseOrigins does not check that the elements are valid origins;
// see [ValidateOrigins].
func ParseOrigins(list string) []string {
	return splitList(list)
}

func splitList(list string) []string {
	var res []string
	for elem := range strings.SplitSeq(list, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		res = append(res, elem)
	}
	return res
}

// ValidateOrigins checks that each element of list is a Web origin in
// [ASCII serialized form] that a browser may send in an Origin header.
// The resulting error, if any, joins *[cfgerrors.UnacceptableOriginError]
// values; see [cfgerrors.All].
//
// [ASCII serialized form]: https://html.spec.whatwg.org/multipage/browsers.html#ascii-serialisation-of-an-origin
func ValidateOrigins(list ...string) error {
	var errs []error
	for _, o := range list {
		if _, err := origins.Parse(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// validateEnvVarName reports whether name can be looked up in the
// environment.
func validateEnvVarName(name string) error {
	if name == "" || strings.ContainsAny(name, "=\x00") {
		return &cfgerrors.InvalidEnvVarNameError{Value: name}
	}
	return nil
}
