package envcors

import (
	"strings"

	"github.com/mohamedibrahim54/envcors/internal/origins"
	"github.com/mohamedibrahim54/envcors/internal/util"
)

// SameAsRedirects is the Web-origin entry that stands for the origins of
// all of a client's valid redirect URIs.
const SameAsRedirects = "+"

// A Client is a client application registered with the authorization
// server.
type Client interface {
	ClientID() string
	// RootURL is the base URL against which relative redirect URIs are
	// resolved; it may be empty.
	RootURL() string
	// WebOrigins lists the Web origins registered for the client;
	// it may include [SameAsRedirects] and [Wildcard].
	WebOrigins() []string
	// RedirectURIs lists the redirect URIs registered for the client;
	// they may be relative and end with a "*" wildcard.
	RedirectURIs() []string
}

// An OriginResolver resolves the Web origins validly registered for
// a client.
type OriginResolver interface {
	// ResolveWebOrigins returns the Web origins validly registered for
	// client. It returns an empty slice if there are none.
	ResolveWebOrigins(sess *Session, client Client) []string
}

// WebOriginsResolver is the default [OriginResolver].
// It returns the client's Web origins, in which [SameAsRedirects] is
// replaced by the origins of the client's absolute http(s) redirect URIs.
// Relative redirect URIs are resolved against the client's root URL and
// a trailing "*" wildcard is ignored.
type WebOriginsResolver struct{}

func (WebOriginsResolver) ResolveWebOrigins(_ *Session, client Client) []string {
	if util.IsNil(client) {
		return nil
	}
	var set util.Set
	var expand bool
	for _, o := range client.WebOrigins() {
		if o == SameAsRedirects {
			expand = true
			continue
		}
		set.Add(o)
	}
	if expand {
		for _, uri := range resolveRedirectURIs(client.RootURL(), client.RedirectURIs()) {
			if o, ok := origins.FromURL(uri); ok {
				set.Add(o)
			}
		}
	}
	return set.ToSlice()
}

func resolveRedirectURIs(rootURL string, uris []string) []string {
	rootURL = strings.TrimSuffix(rootURL, "/")
	res := make([]string, 0, len(uris))
	for _, uri := range uris {
		uri = strings.TrimSuffix(uri, "*")
		if strings.HasPrefix(uri, "/") {
			if rootURL == "" {
				continue
			}
			uri = rootURL + uri
		}
		res = append(res, uri)
	}
	return res
}

// StaticClient is a [Client] whose registration is held in memory.
type StaticClient struct {
	ID        string   `json:"clientId" mapstructure:"client-id"`
	Root      string   `json:"rootUrl,omitempty" mapstructure:"root-url"`
	Origins   []string `json:"webOrigins,omitempty" mapstructure:"web-origins"`
	Redirects []string `json:"redirectUris,omitempty" mapstructure:"redirect-uris"`
}

func (c *StaticClient) ClientID() string       { return c.ID }
func (c *StaticClient) RootURL() string        { return c.Root }
func (c *StaticClient) WebOrigins() []string   { return c.Origins }
func (c *StaticClient) RedirectURIs() []string { return c.Redirects }
