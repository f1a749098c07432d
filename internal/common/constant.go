package common

const (
	// AuthorizationHeader carries the session token on every authenticated
	// request, formatted as "<TokenScheme> <value>".
	AuthorizationHeader = "Authorization"

	// TokenScheme is the authorization scheme understood by the server.
	TokenScheme = "Token"

	// RequestIDHeader is echoed back by the server for log correlation.
	RequestIDHeader = "X-Request-ID"
)
