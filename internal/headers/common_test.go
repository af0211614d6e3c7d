package headers

import (
	"net/http"
	"testing"
)

// This check is important because, otherwise, index expressions
// involving a http.Header and one of those names would yield
// unexpected results.
func TestThatAllRelevantHeaderNamesAreInCanonicalFormat(t *testing.T) {
	headerNames := []string{
		Origin,
		Authorization,
		ACRM,
		ACRH,
		ACAO,
		ACAC,
		ACAM,
		ACAH,
		ACMA,
		ACEH,
		XRequestedWith,
	}
	for _, name := range headerNames {
		if http.CanonicalHeaderKey(name) != name {
			t.Errorf("header name %q is not in canonical format", name)
		}
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{name: "", want: false},
		{name: "authorization", want: true},
		{name: "DPoP", want: true},
		{name: "()", want: false},
		{name: "X Foo", want: false},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			got := IsValid(tc.name)
			if got != tc.want {
				const tmpl = "%q: got %t; want %t"
				t.Errorf(tmpl, tc.name, got, tc.want)
			}
		}
		t.Run(tc.name, f)
	}
}

func TestFirst(t *testing.T) {
	cases := []struct {
		desc      string
		hdrs      http.Header
		wantValue string
		wantFound bool
	}{
		{
			desc: "absent",
			hdrs: http.Header{},
		}, {
			desc: "nil value slice",
			hdrs: http.Header{Origin: nil},
		}, {
			desc:      "present but empty",
			hdrs:      http.Header{Origin: {""}},
			wantFound: true,
		}, {
			desc:      "single value",
			hdrs:      http.Header{Origin: {"https://example.com"}},
			wantValue: "https://example.com",
			wantFound: true,
		}, {
			desc:      "multiple values",
			hdrs:      http.Header{Origin: {"https://example.com", "https://example.org"}},
			wantValue: "https://example.com",
			wantFound: true,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			value, found := First(tc.hdrs, Origin)
			if value != tc.wantValue || found != tc.wantFound {
				const tmpl = "got %q, %t; want %q, %t"
				t.Errorf(tmpl, value, found, tc.wantValue, tc.wantFound)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestJoin(t *testing.T) {
	cases := []struct {
		elems []string
		want  string
	}{
		{elems: nil, want: ""},
		{elems: []string{"GET"}, want: "GET"},
		{elems: []string{"GET", "HEAD", "OPTIONS"}, want: "GET, HEAD, OPTIONS"},
	}
	for _, tc := range cases {
		if got := Join(tc.elems); got != tc.want {
			t.Errorf("%q: got %q; want %q", tc.elems, got, tc.want)
		}
	}
}

func TestCredentials(t *testing.T) {
	if got := Credentials(true); got != "true" {
		t.Errorf("got %q; want %q", got, "true")
	}
	if got := Credentials(false); got != "false" {
		t.Errorf("got %q; want %q", got, "false")
	}
}
