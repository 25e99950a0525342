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

// Package engine provides the public facade over the state-dispatch runtime:
// one ergonomic method per action plus event retrieval and description
// queries. Engine values are cheap to copy; all copies share the same
// runtime and event feed.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
	"github.com/united-manufacturing-hub/payment-core/pkg/fsm/states"
	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
)

// Engine is the cloneable handle used by hosts (HTTP adapter, tests).
// All methods return either a success message or an error; nothing panics
// across this boundary.
type Engine struct {
	manager *fsm.Manager
	stream  *fsm.EventStream
}

// New constructs an engine seeded with a fresh AwaitingInfo state and a
// fully wired registry.
func New() (*Engine, error) {
	registry, err := states.NewRegistry()
	if err != nil {
		return nil, err
	}

	manager, stream := fsm.NewManager(
		states.NewAwaitingInfo(), fsm.StateAwaitingInfo,
		registry, logger.For(logger.ComponentEngine),
	)

	return &Engine{
		manager: manager,
		stream:  stream,
	}, nil
}

// SetAmount sets the payment amount while awaiting info.
func (e *Engine) SetAmount(ctx context.Context, amount float64) (string, error) {
	return e.manager.Execute(ctx, states.SetAmount{Amount: amount})
}

// SetPaymentMethod selects the payment method while awaiting info.
func (e *Engine) SetPaymentMethod(ctx context.Context, method states.PaymentMethod) (string, error) {
	return e.manager.Execute(ctx, states.SetPaymentMethod{Method: method})
}

// ConfirmInfo confirms the collected information and starts the payment.
func (e *Engine) ConfirmInfo(ctx context.Context) (string, error) {
	return e.manager.Execute(ctx, states.ConfirmInfo{})
}

// ProcessPayment starts EMV processing.
func (e *Engine) ProcessPayment(ctx context.Context) (string, error) {
	return e.manager.Execute(ctx, states.ProcessPayment{})
}

// CompletePayment finishes the payment. Empty identifiers are filled with
// generated ones so terminals without an acquirer-side ID still get a
// traceable result.
func (e *Engine) CompletePayment(ctx context.Context, transactionID, authorizationCode string) (string, error) {
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	if authorizationCode == "" {
		authorizationCode = uuid.NewString()
	}

	result := states.EMVResult{
		TransactionID:     transactionID,
		AuthorizationCode: authorizationCode,
		Timestamp:         time.Now().UTC().Format(time.RFC3339Nano),
	}

	return e.manager.Execute(ctx, states.CompletePayment{Result: result})
}

// CancelPayment aborts the current payment and returns to AwaitingInfo.
func (e *Engine) CancelPayment(ctx context.Context) (string, error) {
	return e.manager.Execute(ctx, states.CancelPayment{})
}

// Reset returns from PaymentSuccess to a fresh AwaitingInfo.
func (e *Engine) Reset(ctx context.Context) (string, error) {
	return e.manager.Execute(ctx, states.Reset{})
}

// CurrentState returns the tag of the currently active state.
func (e *Engine) CurrentState() fsm.StateType {
	return e.manager.CurrentStateType()
}

// NextEvent blocks until the next transition event or context cancellation.
func (e *Engine) NextEvent(ctx context.Context) (fsm.TransitionEvent, error) {
	return e.stream.Next(ctx)
}

// TryNextEvent returns the next transition event without blocking.
// ok is false when no event is queued; err is fsm.ErrStreamClosed once the
// stream is closed and drained.
func (e *Engine) TryNextEvent() (event fsm.TransitionEvent, ok bool, err error) {
	return e.stream.TryNext()
}

// Close closes the event stream. Queued events remain retrievable.
func (e *Engine) Close() {
	e.stream.Close()
}

// Snapshot returns a deep-copied view of the current state.
func (e *Engine) Snapshot() (fsm.StateSnapshot, error) {
	return e.manager.Snapshot()
}

// Description returns the description of whatever state is active. Tag and
// value are read under one lock, so a transition landing mid-call can never
// surface as a spurious mismatch.
func (e *Engine) Description() (string, error) {
	return e.manager.Inspect(func(stateType fsm.StateType, state any) (string, error) {
		switch s := state.(type) {
		case *states.AwaitingInfo:
			return s.Description(), nil
		case *states.EMVPayment:
			return s.Description(), nil
		case *states.PaymentSuccess:
			return s.Description(), nil
		default:
			return "", fmt.Errorf("%w: live state is %T tagged %s", fsm.ErrStateTypeMismatch, state, stateType)
		}
	})
}

// AwaitingInfoDescription views the live state as AwaitingInfo.
func (e *Engine) AwaitingInfoDescription() (string, error) {
	return fsm.Describe(e.manager, (*states.AwaitingInfo).Description)
}

// EMVPaymentDescription views the live state as EMVPayment.
func (e *Engine) EMVPaymentDescription() (string, error) {
	return fsm.Describe(e.manager, (*states.EMVPayment).Description)
}

// PaymentSuccessDescription views the live state as PaymentSuccess.
func (e *Engine) PaymentSuccessDescription() (string, error) {
	return fsm.Describe(e.manager, (*states.PaymentSuccess).Description)
}
