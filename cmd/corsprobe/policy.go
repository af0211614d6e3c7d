package main

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/mohamedibrahim54/envcors"
	"github.com/mohamedibrahim54/envcors/cfgerrors"
)

// Error is the error class of configuration problems.
var Error = errs.Class("corsprobe")

// policy is the per-exchange CORS configuration applied by corsprobe.
type policy struct {
	origins    []string
	allowAll   bool
	expose     []string
	methods    []string
	authHeader string
}

func loadPolicy(v *viper.Viper) (*policy, error) {
	p := &policy{
		origins:    v.GetStringSlice(keyAllowOrigin),
		allowAll:   v.GetBool(keyAllowAll),
		expose:     v.GetStringSlice(keyExpose),
		methods:    v.GetStringSlice(keyMethod),
		authHeader: http.CanonicalHeaderKey(v.GetString(keyAuthHeader)),
	}
	if err := envcors.ValidateOrigins(p.origins...); err != nil {
		return nil, Error.New("%s", describe(err))
	}
	return p, nil
}

func (p *policy) configure(r *http.Request, c *envcors.Cors) {
	if p.allowAll {
		c.AllowAllOrigins()
	} else {
		c.AllowedOrigins(p.origins...)
	}
	if len(p.methods) > 0 {
		c.AllowedMethods(p.methods...)
	}
	c.ExposedHeaders(p.expose...)
	if p.authHeader != "" && r.Header.Get(p.authHeader) != "" {
		c.Auth()
	}
}

// newFactory creates a factory configured by the cors section of v, if any.
func newFactory(v *viper.Viper, log *zap.Logger, reg prometheus.Registerer) (*envcors.Factory, error) {
	metrics, err := envcors.NewMetrics(reg)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	f, err := envcors.NewFactory(
		envcors.WithLogger(log.Named("cors")),
		envcors.WithMetrics(metrics),
	)
	if err != nil {
		return nil, Error.New("%s", describe(err))
	}
	if scope := v.Sub(keyCors); scope != nil {
		if err := f.Init(scope); err != nil {
			return nil, Error.New("%s", describe(err))
		}
	}
	return f, nil
}

// describe lists the configuration issues that err joins, one per line.
func describe(err error) string {
	var msgs []string
	for err := range cfgerrors.All(err) {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}
