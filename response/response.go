package response

// ErrorBody is the JSON error shape of every /api route.
type ErrorBody struct {
	Error string `json:"error"`
}

// OKBody acknowledges an operation that has no resource to return.
type OKBody struct {
	OK bool `json:"ok"`
}

// OK builds {"ok": true}.
func OK() OKBody {
	return OKBody{OK: true}
}

// Error builds {"error": message}.
func Error(message string) ErrorBody {
	return ErrorBody{Error: message}
}
