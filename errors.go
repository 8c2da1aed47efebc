package main

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRejected    = errors.New("auth rejected")
	ErrDeliveryFailure = errors.New("delivery failure")
	ErrEmptyOutput     = errors.New("empty output")
)

// GatewayError is returned by every failed call to the LLM provider.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
