package api

// TokenResponse is the raw shape of the login and refresh endpoints. Field
// naming was never standardized across backend versions, so every known
// alias for the access token is accepted here and nowhere else.
type TokenResponse struct {
	Access      string `json:"access"`
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Refresh     string `json:"refresh"`
	Role        string `json:"role"`
}

// TokenPair is the canonical internal shape of a token exchange result.
type TokenPair struct {
	Access  string
	Refresh string
	// Role is the raw role string when the server included one.
	Role string
}

// Normalize collapses the access-token aliases into the canonical pair.
// ok is false when no recognizable access token was present.
func (r TokenResponse) Normalize() (TokenPair, bool) {
	access := r.Access
	if access == "" {
		access = r.Token
	}
	if access == "" {
		access = r.AccessToken
	}
	if access == "" {
		return TokenPair{}, false
	}
	return TokenPair{Access: access, Refresh: r.Refresh, Role: r.Role}, true
}
