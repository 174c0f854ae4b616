package model

import "time"

// ProxyResult is a provider response passed through to the browser untouched.
// Application-level errors inside the body (GraphQL "errors" arrays included)
// are the render layer's concern, not ours.
type ProxyResult struct {
	StatusCode int
	Body       []byte
}

// CallQuery selects calls from the calling platform's call log.
type CallQuery struct {
	StartTime     time.Time
	PhoneNumberID string
	Participants  []string
}

// TokenPair is the result of an OAuth authorization-code exchange. The
// refresh token is shown to the operator for manual provisioning and is
// never persisted by this system.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
