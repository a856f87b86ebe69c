package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the gateway credential is missing; no request was sent
	ErrNotConfigured = errors.New("AI_GATEWAY_API_KEY is not configured")
	// ErrRateLimited means the gateway answered 429
	ErrRateLimited = errors.New("AI gateway rate limit exceeded")
	// ErrPaymentRequired means the gateway answered 402
	ErrPaymentRequired = errors.New("AI gateway requires payment")
)

// GatewayError is any other non-2xx answer from the gateway
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("AI gateway error: %d", e.StatusCode)
}

// TransportError wraps a network-level failure reaching the gateway
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calling AI gateway: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means the gateway reply did not carry a usable JSON payload
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse AI response: %s: %v", e.Reason, e.Err)
	}
	return "failed to parse AI response: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
