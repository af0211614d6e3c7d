package headers

import (
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// header names in canonical format
const (
	// common request headers
	Origin        = "Origin"
	Authorization = "Authorization"

	// preflight-only request headers
	ACRM = "Access-Control-Request-Method"
	ACRH = "Access-Control-Request-Headers"

	// common response headers
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"

	// preflight-only response headers
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACMA = "Access-Control-Max-Age"

	// actual-only response headers
	ACEH = "Access-Control-Expose-Headers"

	DPoP           = "DPoP"
	XRequestedWith = "X-Requested-With"
)

const (
	ValueTrue     = "true"
	ValueFalse    = "false"
	ValueWildcard = "*"
)

// ValueSep separates the elements of the list-based values this package
// produces.
const ValueSep = ", "

// IsValid reports whether name is a valid header name,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#header-name
func IsValid(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// First, if k is present in hdrs, returns the first value associated to k in
// hdrs and true; otherwise, First returns "", false.
// A header line that is present but empty yields "", true.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
//
// First is useful because, contrary to [http.Header.Get], it distinguishes
// an absent header from a present but empty one.
func First(hdrs http.Header, k string) (string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Join joins elems into a list-based header value.
func Join(elems []string) string {
	return strings.Join(elems, ValueSep)
}

// Credentials returns the value of the Access-Control-Allow-Credentials
// header corresponding to auth.
func Credentials(auth bool) string {
	if auth {
		return ValueTrue
	}
	return ValueFalse
}
