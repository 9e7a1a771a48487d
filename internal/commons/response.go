package commons

// Response is the single envelope every service operation returns. Business
// failures travel here as values; the error return of a service method is
// reserved for logging and transport-level decisions.
type Response[T any] struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Data      *T       `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	ErrorKind string   `json:"errorKind,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// KindResponse tags a failure with the domain error kind so the HTTP layer
// can pick a status code without parsing messages.
func KindResponse[T any](kind string, message string, errors ...string) Response[T] {
	return Response[T]{
		Success:   false,
		Message:   message,
		Errors:    errors,
		ErrorKind: kind,
	}
}
