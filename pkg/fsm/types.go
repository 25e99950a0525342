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

// Package fsm implements the generic state-dispatch runtime: a type-erased
// state container, an action-routing registry and a transition event stream.
//
// The runtime is completely generic. It does not know any concrete state,
// it never constructs states (the outgoing state constructs its successor)
// and it contains no type switches over StateType. Adding a new state means
// writing the state and one registry entry; the runtime stays untouched.
package fsm

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// StateType identifies the concrete state variant that is currently active.
// It is used both as the registry key and as the event payload.
type StateType string

const (
	// StateAwaitingInfo is the initial state, collecting payment information.
	StateAwaitingInfo StateType = "AwaitingInfo"
	// StateEMVPayment is the state processing an EMV payment.
	StateEMVPayment StateType = "EMVPayment"
	// StatePaymentSuccess is the state after a completed payment.
	StatePaymentSuccess StateType = "PaymentSuccess"
)

// Code returns the numeric code used for the current-state gauge.
func (s StateType) Code() float64 {
	switch s {
	case StateAwaitingInfo:
		return 0
	case StateEMVPayment:
		return 1
	case StatePaymentSuccess:
		return 2
	default:
		return -1
	}
}

// String returns the tag name.
func (s StateType) String() string {
	return string(s)
}

// TransitionEvent is emitted exactly once per committed state change.
// It is immutable after creation and delivered to subscribers in commit order.
type TransitionEvent struct {
	ID        string    `json:"id"`
	FromState StateType `json:"from_state"`
	ToState   StateType `json:"to_state"`
	Timestamp string    `json:"timestamp"`
}

// NewTransitionEvent creates an event for the given edge with a fresh ID and
// an RFC 3339 timestamp.
func NewTransitionEvent(from, to StateType) TransitionEvent {
	return TransitionEvent{
		ID:        uuid.NewString(),
		FromState: from,
		ToState:   to,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// JSON serializes the event for the host surface.
func (e TransitionEvent) JSON() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Transition is the result of a state deciding to hand over to a successor.
// Next is the fully constructed successor value; the runtime stores it
// wholesale and never inspects it.
type Transition struct {
	Next     any
	NextType StateType
}

// DispatchFunc routes a type-erased action to a type-erased state. It must
// (a) assert the state handle to the concrete type associated with its tag,
// (b) assert the action handle to an action that state accepts, and
// (c) invoke the state's transition logic, returning its result unchanged.
// A nil *Transition with a nil error means the state mutated in place.
type DispatchFunc func(state any, action any) (*Transition, error)
