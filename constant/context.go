package constant

// gin context keys
const (
	RequestIDKey = "request_id"
	// PlainTextErrorsKey marks a route whose errors are rendered as text/plain.
	PlainTextErrorsKey = "plain_text_errors"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"
