package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput is returned when the job role or the resume is not provided.
	ErrMissingInput = errors.New("please provide both a resume PDF and a job role")
	// ErrInvalidResponseShape is returned when a service answered 2xx with a payload that breaks the contract.
	ErrInvalidResponseShape = errors.New("invalid response shape")
	// ErrEmptyResponse is returned by the extractor when there is no text at all.
	ErrEmptyResponse = errors.New("backend response did not contain valid questions text")
	// ErrNoQuestionsParsed is matched by every *NoQuestionsError.
	ErrNoQuestionsParsed = errors.New("no questions parsed")
	// ErrRequestFailed is matched by every *RequestFailedError.
	ErrRequestFailed = errors.New("request failed")
	// ErrTransport is returned for network and decoding failures below HTTP.
	ErrTransport = errors.New("transport failure")
	// ErrIllegalTransition is matched by every *TransitionError.
	ErrIllegalTransition = errors.New("illegal transition")
)

// RequestFailedError describes a non-2xx answer from one of the services.
type RequestFailedError struct {
	StatusCode int
	Detail     string
}

func (e *RequestFailedError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// NoQuestionsError describes why the extractor found nothing usable. Its message is
// shown to the candidate as is.
type NoQuestionsError struct {
	Reason string
}

func (e *NoQuestionsError) Error() string {
	return e.Reason
}

func (e *NoQuestionsError) Is(target error) bool {
	return target == ErrNoQuestionsParsed
}

// TransitionError is returned when an event is not accepted in the current phase.
type TransitionError struct {
	Phase Phase
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s is not accepted in phase %s", ErrIllegalTransition, e.Event, e.Phase)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// ErrorKind returns a short, stable label for err. It is used for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrInvalidResponseShape):
		return "invalid_response_shape"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrNoQuestionsParsed):
		return "no_questions_parsed"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrTransport):
		return "transport_failure"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	default:
		return "unknown"
	}
}
