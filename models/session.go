package models

// Session is the credential snapshot held for the remote calendar service.
// It is replaced wholesale on every refresh, never mutated field by field.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"` // Space-separated scopes granted so far
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// Calendar is a handle to one remote calendar, resolved by display name.
type Calendar struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"timeZone"`
}
