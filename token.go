package envcors

// A Token is an access token that lists the origins allowed to use it.
type Token interface {
	// AllowedOrigins returns the origins listed in the token's claims,
	// or nil if the token carries no such claim.
	AllowedOrigins() []string
}

// AccessToken holds the claims of an access token that matter to CORS.
// Parsing and verifying tokens is the host's job.
type AccessToken struct {
	Subject   string   `json:"sub,omitempty"`
	IssuedFor string   `json:"azp,omitempty"`
	Origins   []string `json:"allowed-origins,omitempty"`
}

func (t *AccessToken) AllowedOrigins() []string {
	if t == nil {
		return nil
	}
	return t.Origins
}
