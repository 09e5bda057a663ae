package errors

import (
	stdErrors "errors"
	"fmt"
)

// StatusError records a non-success HTTP response from one of the remote
// APIs. The body is truncated by the transport layer before it lands here.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d: %s", e.Service, e.Status, e.Body)
}

// StatusOf returns the upstream HTTP status buried in err, or 0 when err
// carries none.
func StatusOf(err error) int {
	var se *StatusError
	if stdErrors.As(err, &se) {
		return se.Status
	}
	return 0
}

// Dump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	RemoteService string `json:"remote_service,omitempty"`
	RemoteStatus  int    `json:"remote_status,omitempty"`
	RemoteBody    string `json:"remote_body,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var se *StatusError
	if stdErrors.As(err, &se) {
		d.RemoteService = se.Service
		d.RemoteStatus = se.Status
		d.RemoteBody = se.Body
	}

	return d
}
