package envcors

// An Outcome is the outcome of a CORS decision.
type Outcome uint8

const (
	// SkippedNoOriginHeader indicates that the request carried no Origin
	// header and therefore was not a CORS request.
	SkippedNoOriginHeader Outcome = iota
	// Accepted indicates that CORS response headers are to be written.
	Accepted
	// RejectedNoPolicy indicates that no origin policy was configured.
	RejectedNoPolicy
	// RejectedOriginMismatch indicates that the request's origin is not
	// allowed.
	RejectedOriginMismatch
)

func (o Outcome) String() string {
	switch o {
	case SkippedNoOriginHeader:
		return "skipped-no-origin-header"
	case Accepted:
		return "accepted"
	case RejectedNoPolicy:
		return "rejected-no-policy"
	case RejectedOriginMismatch:
		return "rejected-origin-mismatch"
	default:
		return "unknown"
	}
}

// Rejected reports whether o is one of the rejection outcomes.
// Rejections are not errors: the exchange proceeds without CORS headers
// and the browser enforces the consequences.
func (o Outcome) Rejected() bool {
	return o == RejectedNoPolicy || o == RejectedOriginMismatch
}

// A Header is a response-header name-value pair.
type Header struct {
	Name  string
	Value string
}

// A Decision is the result of a CORS decision.
type Decision struct {
	Outcome Outcome
	// Origin is the value of the request's Origin header;
	// it is empty if Outcome is SkippedNoOriginHeader.
	Origin string
	// Narrowed reports whether the wildcard origin was replaced by the
	// origins listed in the environment.
	Narrowed bool
	// Allowed lists the effective allowed origins, after narrowing;
	// it is nil if no origin policy was configured.
	Allowed []string
	// Headers lists the response headers to write, in order;
	// it is empty unless Outcome is Accepted.
	Headers []Header
}

// Header returns the value of the response header named name
// and reports whether d contains such a header.
func (d *Decision) Header(name string) (string, bool) {
	for _, h := range d.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// WriteTo writes d's headers to res.
func (d *Decision) WriteTo(res Response) {
	for _, h := range d.Headers {
		res.SetHeader(h.Name, h.Value)
	}
}
