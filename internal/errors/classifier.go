package errors

import (
	"errors"
	"syscall"
)

// ErrorCategory represents the category of an error for retry logic.
type ErrorCategory int

const (
	ErrorTransient  ErrorCategory = iota // Temporary errors - retry with backoff
	ErrorPermanent                       // Permanent errors - no retry
	ErrorCritical                        // System-level errors - alert immediately
	ErrorValidation                      // Data validation errors - no retry
	ErrorNetwork                         // Network-related - retry with backoff
)

// Classifier categorizes errors for intelligent retry logic.
type Classifier struct{}

// NewClassifier creates a new error classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify determines the category of an error.
func (c *Classifier) Classify(err error) ErrorCategory {
	if err == nil {
		return ErrorPermanent // Should not happen, but safe default
	}

	// Check for system-level errors
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.EAGAIN, syscall.ENOMEM, syscall.ETIMEDOUT:
			return ErrorTransient
		case syscall.ENOENT, syscall.EINVAL, syscall.EEXIST:
			return ErrorPermanent
		case syscall.EIO, syscall.ENOSPC:
			return ErrorCritical
		}
	}

	// Planning failures never benefit from retry: the query description
	// itself is malformed or unplannable, and retrying won't change that.
	var ve *ValidationError
	var pe *PlanError
	if errors.As(err, &ve) || errors.As(err, &pe) {
		return ErrorValidation
	}

	// A storage failure might be transient (the backing store the caller
	// wired in hiccuped) or permanent; defer to whatever it wrapped.
	var se *StorageError
	if errors.As(err, &se) {
		if se.Err != nil && se.Err != err {
			return c.Classify(se.Err)
		}
		return ErrorTransient
	}

	switch err {
	case ErrCancelled:
		return ErrorPermanent
	case ErrUnknownColumn, ErrUnknownTable, ErrAmbiguousColumn, ErrTypeMismatch, ErrInvalidAggregator, ErrNegativeBound:
		return ErrorValidation
	case ErrRowExists, ErrRowNotFound, ErrTableExists:
		return ErrorPermanent
	}

	// Default: treat as permanent (no retry)
	return ErrorPermanent
}

// ShouldRetry returns true if the error category indicates retry is appropriate.
func (c *Classifier) ShouldRetry(category ErrorCategory) bool {
	return category == ErrorTransient || category == ErrorNetwork
}

// IsCritical returns true if the error requires immediate attention.
func (c *Classifier) IsCritical(category ErrorCategory) bool {
	return category == ErrorCritical
}
