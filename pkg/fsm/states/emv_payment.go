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

package states

import (
	"fmt"

	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
)

// Actions accepted by EMVPayment.
type (
	// ProcessPayment starts EMV processing.
	ProcessPayment struct{}

	// CompletePayment finishes processing with the given terminal result.
	CompletePayment struct {
		Result EMVResult
	}

	// CancelPayment aborts and returns to a fresh AwaitingInfo.
	CancelPayment struct{}
)

// EMVPayment is the state processing an EMV payment for confirmed info.
type EMVPayment struct {
	Info       PaymentInfo
	Processing bool
}

// Apply executes one action. CompletePayment and CancelPayment construct
// their successors here; the runtime never builds states.
func (s *EMVPayment) Apply(action any) (*fsm.Transition, error) {
	switch a := action.(type) {
	case ProcessPayment:
		if s.Processing {
			return nil, &fsm.PreconditionError{Reason: "payment is already being processed"}
		}

		s.Processing = true

		return nil, nil

	case CompletePayment:
		if !s.Processing {
			return nil, &fsm.PreconditionError{Reason: "payment has not been started"}
		}

		result := a.Result
		next := &PaymentSuccess{
			Info:   s.Info,
			Result: result,
		}

		return &fsm.Transition{NextType: fsm.StatePaymentSuccess, Next: next}, nil

	case CancelPayment:
		// Cancel always succeeds and hands back a fresh initial state, not a
		// stale clone of the one this payment started from.
		return &fsm.Transition{NextType: fsm.StateAwaitingInfo, Next: NewAwaitingInfo()}, nil

	default:
		return nil, fmt.Errorf("%w: %T is not an EMVPayment action", fsm.ErrIncompatibleAction, action)
	}
}

// Description returns a human-readable summary for the host.
func (s *EMVPayment) Description() string {
	if s.Processing {
		return fmt.Sprintf("processing payment of %.2f...", s.Info.Amount)
	}

	return fmt.Sprintf("ready to process payment of %.2f", s.Info.Amount)
}
