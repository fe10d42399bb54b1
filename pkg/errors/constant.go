package errors

const (
	MessageUnauthorized = "Unauthorized"
	MessageForbidden    = "Forbidden"
	MessageNotFound     = "Not found"
	MessageTooMany      = "Too many requests"
)
