package server

// HeaderAPIKey is the header carrying the client API key.
const HeaderAPIKey = "X-API-Key"

// PublicPaths are reachable without an API key.
var PublicPaths = []string{
	"/healthz",
	"/readyz",
	"/version",
	"/metrics",
	"/swagger",
}

// Error Messages
const (
	ErrMsgUnauthorized = "Unauthorized"
)

// Log Messages
const (
	LogMsgAuthFailed = "Authentication failed"
)
