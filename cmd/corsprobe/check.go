package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mohamedibrahim54/envcors"
)

type checkOptions struct {
	origin    string
	preflight bool
	auth      bool
}

func newCheckCmd(v *viper.Viper) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the CORS headers the configured policy writes for one request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdCheck(cmd.OutOrStdout(), v, &opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.origin, "origin", "", "value of the request's Origin header (none if empty)")
	flags.BoolVar(&opts.preflight, "preflight", false, "send a CORS-preflight request")
	flags.BoolVar(&opts.auth, "auth", false, "send credentials in the auth header")
	return cmd
}

// printedResponse prints the headers that are set on it.
type printedResponse struct {
	out io.Writer
}

func (r printedResponse) SetHeader(name, value string) {
	fmt.Fprintf(r.out, "%s: %s\n", name, value)
}

func cmdCheck(out io.Writer, v *viper.Viper, opts *checkOptions) error {
	log, err := newLogger(v.GetString(keyLogLevel))
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { _ = log.Sync() }()

	p, err := loadPolicy(v)
	if err != nil {
		return err
	}
	f, err := newFactory(v, log, nil)
	if err != nil {
		return err
	}

	method := http.MethodGet
	if opts.preflight {
		method = http.MethodOptions
	}
	req, err := http.NewRequest(method, "http://corsprobe.invalid/", nil)
	if err != nil {
		return Error.Wrap(err)
	}
	if opts.origin != "" {
		req.Header.Set("Origin", opts.origin)
	}
	if opts.preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	if opts.auth && p.authHeader != "" {
		req.Header.Set(p.authHeader, "corsprobe")
	}

	c := f.Create(&envcors.Session{Request: req, Response: printedResponse{out: out}})
	defer func() { _ = c.Close() }()
	if opts.preflight {
		c.Preflight()
	}
	p.configure(req, c)
	dec, err := c.Add()
	if err != nil {
		return Error.Wrap(err)
	}
	log.Debug("decided", zap.Stringer("outcome", dec.Outcome), zap.Strings("allowed", dec.Allowed))
	fmt.Fprintln(out, dec.Outcome)
	return nil
}
