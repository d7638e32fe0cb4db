package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrRunInProgress is returned when an analysis run is started while another
// one is still in flight on the same coordinator.
var ErrRunInProgress = errors.New("analysis run already in progress")

// ConnectivityError means the inference endpoint could not be reached or failed
// its liveness check. It aborts a run before any prompt is sent.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot connect to inference endpoint %s (is it running?): %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// EndpointError wraps a non-success HTTP status from the inference endpoint.
type EndpointError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Body       string
	Err        error
}

func (e *EndpointError) Error() string {
	msg := fmt.Sprintf("inference endpoint returned HTTP %d", e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// ParseError means the model output did not contain an extractable, valid
// JSON structure of the expected shape.
type ParseError struct {
	Shape string // "batch" or "single"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Shape, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MatchError records a returned analysis that could not be tied to any input company.
type MatchError struct {
	Name      string
	CompanyID string
}

func (e *MatchError) Error() string {
	if e.CompanyID != "" {
		return fmt.Sprintf("no input company matches analysis %q (id %q)", e.Name, e.CompanyID)
	}
	return fmt.Sprintf("no input company matches analysis %q", e.Name)
}
