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

// Reset is the only action accepted by PaymentSuccess. It returns the
// machine to a fresh AwaitingInfo; there is no terminal state.
type Reset struct{}

// PaymentSuccess is the state after a completed payment.
type PaymentSuccess struct {
	Info   PaymentInfo
	Result EMVResult
}

// Apply executes one action.
func (s *PaymentSuccess) Apply(action any) (*fsm.Transition, error) {
	switch action.(type) {
	case Reset:
		return &fsm.Transition{NextType: fsm.StateAwaitingInfo, Next: NewAwaitingInfo()}, nil

	default:
		return nil, fmt.Errorf("%w: %T is not a PaymentSuccess action", fsm.ErrIncompatibleAction, action)
	}
}

// Description returns a human-readable summary for the host.
func (s *PaymentSuccess) Description() string {
	return fmt.Sprintf("payment completed - id: %s, code: %s, amount: %.2f",
		s.Result.TransactionID, s.Result.AuthorizationCode, s.Info.Amount)
}
