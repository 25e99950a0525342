// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fsm

import "errors"

var (
	// ErrUnregisteredState is returned when the current StateType has no
	// registry entry. This indicates broken registry bootstrap and is fatal
	// to the call, not to the process.
	ErrUnregisteredState = errors.New("state not registered")

	// ErrStateTypeMismatch is returned when the stored state value's concrete
	// type disagrees with its tag. This should never happen while registry
	// and runtime stay consistent and is reported as an invariant breach.
	ErrStateTypeMismatch = errors.New("stored state does not match its tag")

	// ErrIncompatibleAction is returned when the submitted action's concrete
	// type is not accepted by the current state. This is the expected
	// rejection path for "wrong action for the current state", not a bug.
	ErrIncompatibleAction = errors.New("action not valid for the current state")

	// ErrAlreadyRegistered is returned when a registry entry for a StateType
	// would be overwritten. Registration is write-once per tag.
	ErrAlreadyRegistered = errors.New("state already registered")

	// ErrStreamClosed is returned by event retrieval after the stream has
	// been closed and drained.
	ErrStreamClosed = errors.New("event stream closed")
)

// IsStreamClosed checks if the error is a closed-stream error.
func IsStreamClosed(err error) bool {
	return errors.Is(err, ErrStreamClosed)
}

// IsUnregisteredState checks if the error is an unregistered-state error.
func IsUnregisteredState(err error) bool {
	return errors.Is(err, ErrUnregisteredState)
}

// IsStateTypeMismatch checks if the error is a state/tag mismatch error.
func IsStateTypeMismatch(err error) bool {
	return errors.Is(err, ErrStateTypeMismatch)
}

// IsIncompatibleAction checks if the error is an incompatible-action error.
func IsIncompatibleAction(err error) bool {
	return errors.Is(err, ErrIncompatibleAction)
}

// ValidationError is raised by a state rejecting an action's field values.
// It is always recoverable, the caller may retry with corrected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed for " + e.Field + ": " + e.Reason
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}

// PreconditionError is raised when required prior data is missing or an
// action is invalid for the current sub-state. State remains unchanged.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition not met: " + e.Reason
}

// IsPreconditionError checks if the error is a precondition error.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError

	return errors.As(err, &pe)
}
