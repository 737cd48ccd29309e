// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verrs gives every externally visible failure a stable numeric code.
// Callers are expected to branch on the code, never on the message text. Codes
// are append-only: once shipped, a code keeps its meaning for life.
package verrs

import (
	"errors"
	"fmt"
)

type Code uint32

const (
	CodeUnknown Code = 0

	// Account errors
	CodeAccountNotFound     Code = 1000
	CodeAccountLocked       Code = 1001
	CodeAccountNonceTooLow  Code = 1002
	CodeCommitmentMismatch  Code = 1003
	CodeAccountLimits       Code = 1004
	CodeAccountSeedRequired Code = 1005

	// Note errors
	CodeNoteNotFound           Code = 2000
	CodeNoteNotConsumable      Code = 2001
	CodeInvalidStateTransition Code = 2002

	// Transaction request errors
	CodeDuplicateInputNote          Code = 3000
	CodeNoInputNotesNorAccountDelta Code = 3001
	CodeInputNoteNotAuthenticated   Code = 3002
	CodeStorageSlotNotFound         Code = 3003
	CodeTransactionDiscarded        Code = 3004
	CodeInvalidFlowStage            Code = 3005

	// Store errors
	CodeStore                 Code = 4000
	CodeStoreDeserialize      Code = 4001
	CodeMigrationHashMismatch Code = 4002
	CodeMmrLengthMismatch     Code = 4003

	// RPC errors
	CodeRPCConnection  Code = 5000
	CodeRPCDeserialize Code = 5001
	CodeRPCStatus      Code = 5002

	// Sync errors
	CodeSyncTimeout     Code = 6000
	CodeStaleGeneration Code = 6001
	CodeSyncApplyFailed Code = 6002
)

var _ error = (*Error)(nil)

// Error pairs a stable code with a human readable message. Two Errors match
// under errors.Is iff their codes are equal, so sentinel values defined with
// New can be used as targets for wrapped instances.
type Error struct {
	Code    Code
	Message string

	cause error
}

func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (code %d): %s", e.Message, e.Code, e.cause)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithCause returns a copy of [e] wrapping [cause]. The original sentinel is
// left untouched.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   cause,
	}
}

// WithMessagef returns a copy of [e] with additional context appended to the
// message. The code is preserved.
func (e *Error) WithMessagef(format string, args ...interface{}) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
		cause:   e.cause,
	}
}

// CodeOf extracts the stable code from [err], or CodeUnknown if the chain
// carries none.
func CodeOf(err error) Code {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Code
	}
	return CodeUnknown
}
