package service

import "errors"

var (
	// ErrInvalidRequest covers caller errors: missing payment session id,
	// missing customer email or an empty item list after reconciliation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstreamUnavailable means the payment provider lookup failed or
	// timed out. Safe to retry; the idempotency guard absorbs resubmission.
	ErrUpstreamUnavailable = errors.New("payment provider unavailable")

	ErrOrderNotFound         = errors.New("order not found")
	ErrMissingTrackingNumber = errors.New("tracking number is required to dispatch an order")
	ErrInvalidStatus         = errors.New("invalid order status")

	// ErrPersistence means a datastore write failed. Safe to retry.
	ErrPersistence = errors.New("failed to persist order")
)
