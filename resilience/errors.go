package resilience

// Response represents a business error with code, title, and message, as
// rendered on the wire by the net/http helpers.
type Response struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func (r Response) Error() string {
	return r.Message
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (r Response) Unwrap() error { return r.Err }
