package envcors_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedibrahim54/envcors"
	"github.com/mohamedibrahim54/envcors/cfgerrors"
)

var _ envcors.CorsFactory = (*envcors.Factory)(nil)
var _ envcors.Scope = (*viper.Viper)(nil)

func TestNewFactoryErrors(t *testing.T) {
	cases := []struct {
		desc string
		opts []envcors.Option
		want []error
	}{
		{
			desc: "invalid method",
			opts: []envcors.Option{envcors.WithDefaultMethods("GET", "résumé")},
			want: []error{
				&cfgerrors.UnacceptableMethodError{Value: "résumé", Reason: "invalid"},
			},
		}, {
			desc: "forbidden methods",
			opts: []envcors.Option{envcors.WithDefaultMethods("CONNECT", "trace")},
			want: []error{
				&cfgerrors.UnacceptableMethodError{Value: "CONNECT", Reason: "forbidden"},
				&cfgerrors.UnacceptableMethodError{Value: "trace", Reason: "forbidden"},
			},
		}, {
			desc: "invalid and prohibited header names",
			opts: []envcors.Option{
				envcors.WithDefaultHeaders("Content-Type", "x foo", "Access-Control-Allow-Origin"),
			},
			want: []error{
				&cfgerrors.UnacceptableHeaderNameError{Value: "x foo", Reason: "invalid"},
				&cfgerrors.UnacceptableHeaderNameError{Value: "Access-Control-Allow-Origin", Reason: "prohibited"},
			},
		}, {
			desc: "negative max age",
			opts: []envcors.Option{envcors.WithMaxAge(-1)},
			want: []error{
				&cfgerrors.MaxAgeOutOfBoundsError{Value: -1, Max: 86400},
			},
		}, {
			desc: "max age too high",
			opts: []envcors.Option{envcors.WithMaxAge(86401)},
			want: []error{
				&cfgerrors.MaxAgeOutOfBoundsError{Value: 86401, Max: 86400},
			},
		}, {
			desc: "invalid environment-variable names",
			opts: []envcors.Option{
				envcors.WithEnvVar(""),
				envcors.WithEnvVar("A=B"),
			},
			want: []error{
				&cfgerrors.InvalidEnvVarNameError{Value: ""},
				&cfgerrors.InvalidEnvVarNameError{Value: "A=B"},
			},
		}, {
			desc: "multiple issues",
			opts: []envcors.Option{
				envcors.WithMaxAge(-1),
				envcors.WithDefaultMethods("TRACK"),
			},
			want: []error{
				&cfgerrors.MaxAgeOutOfBoundsError{Value: -1, Max: 86400},
				&cfgerrors.UnacceptableMethodError{Value: "TRACK", Reason: "forbidden"},
			},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			factory, err := envcors.NewFactory(tc.opts...)
			require.Error(t, err)
			assert.Nil(t, factory)
			var got []error
			for err := range cfgerrors.All(err) {
				got = append(got, err)
			}
			assert.Equal(t, tc.want, got)
		}
		t.Run(tc.desc, f)
	}
}

func preflight(t *testing.T, f envcors.CorsFactory, auth bool) http.Header {
	t.Helper()
	sess, rec := newSession(http.MethodOptions, http.Header{
		headerOrigin: {"https://a.example"},
		headerACRM:   {"PUT"},
	})
	c := f.Create(sess).Preflight()
	if auth {
		c.Auth()
	}
	_, err := c.Add()
	require.NoError(t, err)
	return rec.Header()
}

func TestFactoryDefaults(t *testing.T) {
	f := newFactory(t,
		envcors.WithDefaultMethods("GET", "POST", "GET"),
		envcors.WithDefaultHeaders("Content-Type", "DPoP"),
		envcors.WithMaxAge(0),
	)
	hdrs := preflight(t, f, false)
	assert.Equal(t, "GET, POST", hdrs.Get(headerACAM))
	assert.Equal(t, "Content-Type, DPoP", hdrs.Get(headerACAH))
	assert.Equal(t, "0", hdrs.Get(headerACMA))

	hdrs = preflight(t, f, true)
	assert.Equal(t, "Content-Type, DPoP, Authorization", hdrs.Get(headerACAH))
}

func TestFactoryEmptyDefaultHeaders(t *testing.T) {
	f := newFactory(t, envcors.WithDefaultHeaders())
	assert.Equal(t, []string{""}, preflight(t, f, false)[headerACAH])
	assert.Equal(t, "Authorization", preflight(t, f, true).Get(headerACAH))
}

func TestZeroFactory(t *testing.T) {
	var f envcors.Factory
	assert.Equal(t, envcors.ProviderID, f.ID())
	hdrs := preflight(t, &f, true)
	assert.Equal(t, envcors.DefaultAllowMethods, hdrs.Get(headerACAM))
	assert.Equal(t, defaultACAHWithAuth, hdrs.Get(headerACAH))
	assert.Equal(t, "3600", hdrs.Get(headerACMA))
	assert.NoError(t, f.Close())
}

func TestFactoryInit(t *testing.T) {
	const name = "ENVCORS_TEST_INIT_ORIGINS"
	t.Setenv(name, "https://a.example")
	const cfg = `
env-var: ENVCORS_TEST_INIT_ORIGINS
allow-methods:
  - GET
  - PATCH
allow-headers:
  - Content-Type
max-age: 600
`
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(cfg)))

	f := newFactory(t)
	require.NoError(t, f.Init(v))

	hdrs := preflight(t, f, true)
	assert.Equal(t, "GET, PATCH", hdrs.Get(headerACAM))
	assert.Equal(t, "Content-Type, Authorization", hdrs.Get(headerACAH))
	assert.Equal(t, "600", hdrs.Get(headerACMA))

	sess, _ := newSession(http.MethodGet, fromOrigin("https://c.example"))
	dec, err := f.Create(sess).AllowAllOrigins().Add()
	require.NoError(t, err)
	assert.Equal(t, envcors.RejectedOriginMismatch, dec.Outcome)
	assert.Equal(t, []string{"https://a.example"}, dec.Allowed)
}

func TestFactoryInitLeavesUnsetKeysAlone(t *testing.T) {
	f := newFactory(t, envcors.WithMaxAge(60))
	v := viper.New()
	v.Set(envcors.KeyAllowMethods, []string{"PUT"})
	require.NoError(t, f.Init(v))

	hdrs := preflight(t, f, false)
	assert.Equal(t, "PUT", hdrs.Get(headerACAM))
	assert.Equal(t, envcors.DefaultAllowHeaders, hdrs.Get(headerACAH))
	assert.Equal(t, "60", hdrs.Get(headerACMA))
}

func TestFactoryInitErrors(t *testing.T) {
	f := newFactory(t)
	v := viper.New()
	v.Set(envcors.KeyEnvVar, "BAD=NAME")
	v.Set(envcors.KeyAllowMethods, []string{"GET", "CONNECT"})
	v.Set(envcors.KeyAllowHeaders, []string{"Access-Control-Max-Age"})
	v.Set(envcors.KeyMaxAge, 100_000)

	err := f.Init(v)
	require.Error(t, err)
	var got []error
	for err := range cfgerrors.All(err) {
		got = append(got, err)
	}
	want := []error{
		&cfgerrors.InvalidEnvVarNameError{Value: "BAD=NAME"},
		&cfgerrors.UnacceptableMethodError{Value: "CONNECT", Reason: "forbidden"},
		&cfgerrors.UnacceptableHeaderNameError{Value: "Access-Control-Max-Age", Reason: "prohibited"},
		&cfgerrors.MaxAgeOutOfBoundsError{Value: 100_000, Max: 86400},
	}
	assert.Equal(t, want, got)

	// f is left unchanged
	hdrs := preflight(t, f, false)
	assert.Equal(t, envcors.DefaultAllowMethods, hdrs.Get(headerACAM))
	assert.Equal(t, "3600", hdrs.Get(headerACMA))
}
