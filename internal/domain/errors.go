package domain

import "errors"

var (
	// Statement errors
	ErrStatementNotFound = errors.New("statement not found")

	// Submission errors
	ErrInvalidSubmission = errors.New("invalid import submission")
	ErrEnqueueFailed     = errors.New("failed to enqueue import job")

	// Job errors
	ErrJobNotFound = errors.New("import job not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrMissingOrg   = errors.New("session has no organization")
)
