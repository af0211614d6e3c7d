package origins

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/idna"

	"github.com/mohamedibrahim54/envcors/cfgerrors"
)

const (
	schemeHostSep = "://" // scheme-host separator
	hostPortSep   = ':'   // host-port separator
	labelSep      = '.'   // DNS-label separator
)

const (
	// maxHostLen is the maximum length of a host, which is dominated by
	// the maximum length of an (absolute) domain name (253);
	// see https://devblogs.microsoft.com/oldnewthing/20120412-00/?p=7873.
	maxHostLen = 253
	// maxSchemeLen is the maximum tolerated length for schemes.
	// Its value is somewhat arbitrary but chosen so as to cover the great
	// majority of commonly used schemes.
	maxSchemeLen = 64
	// maxPortLen is the maximum length of a port's decimal representation.
	maxPortLen = len("65535")
	// maxHostPortLen is the maximum length of an origin's host-port part.
	maxHostPortLen = maxHostLen + len(string(hostPortSep)) + maxPortLen
	// maxOriginLen is the maximum length of an origin.
	maxOriginLen = maxSchemeLen + len(schemeHostSep) + maxHostPortLen
)

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

// Kind represents the kind of an origin's host.
type Kind uint8

const (
	Domain        Kind = iota // domain
	NonLoopbackIP             // non-loopback IP address
	LoopbackIP                // loopback IP address
)

// An Origin represents a (tuple) [Web origin].
// The zero value does not correspond to a valid origin.
//
// [Web origin]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
type Origin struct {
	// Scheme is the origin's scheme.
	Scheme string
	// Host is the origin's host, without brackets in the case of IPv6.
	Host string
	// Port is the origin's port (if any).
	// The zero value marks the absence of an explicit port.
	Port int
	// Kind is the kind of the origin's host.
	Kind Kind
}

// Parse parses str, which is expected to be in [ASCII serialized form],
// into a fully valid [Origin] structure.
// If it fails, it returns a non-nil error and some invalid origin.
//
// [ASCII serialized form]: https://html.spec.whatwg.org/multipage/browsers.html#ascii-serialisation-of-an-origin
func Parse(str string) (o Origin, err error) {
	// Using [url.Parse] to parse str is tempting, but that function is in
	// some ways too permissive (e.g. it accepts paths and user info).

	// As a defensive measure against maliciously long origins,
	// let's first check the length of str.
	if len(str) > maxOriginLen {
		err = invalidOriginError(str)
		return
	}
	if str == "null" {
		err = prohibitedOriginError(str)
		return
	}
	var (
		rest string
		ok   bool
	)
	o.Scheme, rest, ok = parseScheme(str)
	if !ok {
		err = invalidOriginError(str)
		return
	}
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		err = invalidOriginError(str)
		return
	}
	o.Host, o.Kind, rest, err = parseHost(rest, str)
	if err != nil {
		return
	}
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			err = invalidOriginError(str)
			return
		}
		o.Port, ok = parsePort(rest)
		if !ok {
			err = invalidOriginError(str)
			return
		}
		if isDefaultPortForScheme(o.Scheme, o.Port) {
			err = prohibitedOriginError(str)
			return
		}
	}
	return o, nil
}

func prohibitedOriginError(origin string) error {
	return &cfgerrors.UnacceptableOriginError{
		Value:  origin,
		Reason: "prohibited",
	}
}

func invalidOriginError(origin string) error {
	return &cfgerrors.UnacceptableOriginError{
		Value:  origin,
		Reason: "invalid",
	}
}

// String returns the ASCII serialization of o.
func (o *Origin) String() string {
	var b strings.Builder
	b.WriteString(o.Scheme)
	b.WriteString(schemeHostSep)
	if o.Kind != Domain && strings.IndexByte(o.Host, hostPortSep) >= 0 {
		b.WriteByte('[')
		b.WriteString(o.Host)
		b.WriteByte(']')
	} else {
		b.WriteString(o.Host)
	}
	if o.Port != 0 {
		b.WriteByte(hostPortSep)
		b.WriteString(strconv.Itoa(o.Port))
	}
	return b.String()
}

// IsDeemedInsecure reports whether all of the following conditions are
// fulfilled:
//   - o's scheme is not https,
//   - o's host is not a loopback IP address,
//   - o's host is not localhost.
//
// Note: protocols using a scheme other than https may well encrypt traffic,
// but let's be conservative here.
func (o *Origin) IsDeemedInsecure() bool {
	return o.Scheme != schemeHTTPS &&
		o.Kind != LoopbackIP &&
		o.Host != "localhost"
}

// parseScheme parses a URI scheme. If successful, it returns the scheme,
// the unconsumed part of str, and true; otherwise, its ok result is false.
func parseScheme(str string) (scheme, rest string, ok bool) {
	// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.

	if str == "" || !isLowerAlpha(str[0]) {
		return
	}
	end := min(maxSchemeLen, len(str))
	i := 1
	for ; i < end; i++ {
		if !isSubsequentSchemeByte(str[i]) {
			break
		}
	}
	scheme = str[:i]
	return scheme, str[i:], scheme != "file"
}

// isLowerAlpha reports whether c is in the 0x61-0x7A ASCII range.
func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

// isSubsequentSchemeByte reports whether c a valid byte at index >= 1 in a scheme.
func isSubsequentSchemeByte(c byte) bool {
	// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.
	const mask = 0 |
		1<<'+' |
		1<<'-' |
		1<<'.' |
		(1<<10-1)<<'0' |
		(1<<26-1)<<'a'
	return ((uint64(1)<<c)&(mask&(1<<64-1)) |
		(uint64(1)<<(c-64))&(mask>>64)) != 0
}

// parseHost scans and validates a host in str.
// If it succeeds, it returns the host, its kind, the unconsumed part
// of str, and nil; otherwise, its err result is some non-nil error.
func parseHost(str, rawOrigin string) (host string, kind Kind, rest string, err error) {
	var assumeIP, bracketed bool
	if str != "" && str[0] == '[' { // str must be an IPv6 address.
		var ok bool
		host, rest, ok = strings.Cut(str[1:], "]")
		if !ok { // unmatched left bracket
			err = invalidOriginError(rawOrigin)
			return
		}
		assumeIP, bracketed = true, true
	} else { // str must be either an IPv4 address or a domain.
		host, rest = scanHost(str)
		// If the last non-empty label starts with a digit,
		// assume an IPv4 address, since no TLD starts with a digit
		// (see https://www.iana.org/domains/root/db).
		var ok bool
		assumeIP, ok = firstByteOfRightmostLabelIsDigit(host)
		if !ok {
			err = invalidOriginError(rawOrigin)
			return
		}
	}
	if assumeIP { // host must be an IPv4 or IPv6 address.
		var ip netip.Addr
		ip, err = netip.ParseAddr(host)
		if err != nil || ip.Zone() != "" || bracketed != ip.Is6() {
			err = invalidOriginError(rawOrigin)
			return
		}
		if ip.Is4In6() || host != ip.String() {
			err = prohibitedOriginError(rawOrigin)
			return
		}
		if ip.IsLoopback() {
			kind = LoopbackIP
		} else {
			kind = NonLoopbackIP
		}
		return host, kind, rest, nil
	}
	if len(host) > maxHostLen {
		err = invalidOriginError(rawOrigin)
		return
	}
	profileOnce.Do(initProfile)
	if _, err = profile.ToASCII(host); err != nil {
		err = prohibitedOriginError(rawOrigin)
		return
	}
	return host, Domain, rest, nil
}

// scanHost scans a host in str; it does not attempt to validate the result.
// It returns the scanned host and the unconsumed part of str.
func scanHost(str string) (host, rest string) {
	var i int
	for i = 0; i < len(str) && isDomainByte(str[i]); i++ {
		// deliberately empty
	}
	return str[:i], str[i:]
}

// isDomainByte reports whether c is an ASCII lowercase letter, an ASCII digit,
// a hyphen (0x2D), a period (0x2E), or an underscore (0x5F).
func isDomainByte(c byte) bool {
	const mask = 0 |
		1<<'-' |
		1<<labelSep |
		(1<<10-1)<<'0' |
		(1<<26-1)<<'a' |
		1<<'_' // see https://stackoverflow.com/q/2180465
	return ((uint64(1)<<c)&(mask&(1<<64-1)) |
		(uint64(1)<<(c-64))&(mask>>64)) != 0
}

// firstByteOfRightmostLabelIsDigit reports whether the first byte of the
// rightmost DNS label in host is a digit.
// If it succeeds, it returns the result of that check and true;
// otherwise, its ok result is false.
func firstByteOfRightmostLabelIsDigit(host string) (_ bool, ok bool) {
	rest, label, _ := lastCutByte(host, labelSep)
	if label != "" {
		return isDigit(label[0]), true
	}
	// host contains a trailing period ("absolute" domain).
	_, label, _ = lastCutByte(rest, labelSep)
	if label != "" {
		return isDigit(label[0]), true
	}
	return
}

// isDigit reports whether c is in the 0x30-0x39 ASCII range.
func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// lastCutByte slices s around the last instance of sep, returning the text
// before and after sep. The found result reports whether sep appears in s.
// If sep does not appear in s, lastCutByte returns "", s, false.
func lastCutByte(s string, sep byte) (before, after string, found bool) {
	if i := strings.LastIndexByte(s, sep); i >= 0 {
		after = s[i+1:] // eliminate one bounds check below
		return s[:i], after, true
	}
	return "", s, false
}

var (
	profileOnce sync.Once     // guards init of profile via initProfile
	profile     *idna.Profile // lazily initialized
)

func initProfile() {
	profile = idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
}

// parsePort parses a port number.
// It it succeeds, it returns the port number and true;
// otherwise, it returns 0 and false.
func parsePort(str string) (int, bool) {
	if len(str) == 0 || len(str) > maxPortLen || str[0] == '0' {
		return 0, false
	}
	port := 0
	for i := 0; i < len(str); i++ {
		if !isDigit(str[i]) {
			return 0, false
		}
		port = 10*port + int(str[i]-'0')
	}
	const maxUint16 = 1<<16 - 1
	if maxUint16 < port {
		return 0, false
	}
	return port, true
}

// isDefaultPortForScheme returns true for the following combinations
//   - (https, 443)
//   - (http, 80)
//
// and false otherwise.
func isDefaultPortForScheme(scheme string, port int) bool {
	const (
		portHTTP  = 80
		portHTTPS = 443
	)
	return port == portHTTP && scheme == schemeHTTP ||
		port == portHTTPS && scheme == schemeHTTPS
}

// FromURL returns the serialized origin of absolute http(s) URL rawURL,
// in the form scheme://host[:port], and true.
// For any other input, it returns "", false.
func FromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != schemeHTTP && scheme != schemeHTTPS {
		return "", false
	}
	// Browsers elide default ports from the Origin header; so do we.
	host := strings.ToLower(u.Hostname())
	if strings.IndexByte(host, hostPortSep) >= 0 {
		host = "[" + host + "]"
	}
	origin := scheme + schemeHostSep + host
	if port := u.Port(); port != "" {
		if p, ok := parsePort(port); ok && !isDefaultPortForScheme(scheme, p) {
			origin += string(hostPortSep) + port
		}
	}
	return origin, true
}
