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

// NewRegistry wires the dispatch entries for all payment states.
//
// Each routing function asserts the type-erased state handle to the concrete
// type belonging to its tag (a mismatch is an internal-invariant error) and
// then lets the state's own Apply reject actions it does not accept.
func NewRegistry() (*fsm.Registry, error) {
	registry := fsm.NewRegistry()

	if err := registry.Register(fsm.StateAwaitingInfo, func(state any, action any) (*fsm.Transition, error) {
		s, ok := state.(*AwaitingInfo)
		if !ok {
			return nil, fmt.Errorf("%w: expected *AwaitingInfo, got %T", fsm.ErrStateTypeMismatch, state)
		}

		return s.Apply(action)
	}); err != nil {
		return nil, err
	}

	if err := registry.Register(fsm.StateEMVPayment, func(state any, action any) (*fsm.Transition, error) {
		s, ok := state.(*EMVPayment)
		if !ok {
			return nil, fmt.Errorf("%w: expected *EMVPayment, got %T", fsm.ErrStateTypeMismatch, state)
		}

		return s.Apply(action)
	}); err != nil {
		return nil, err
	}

	if err := registry.Register(fsm.StatePaymentSuccess, func(state any, action any) (*fsm.Transition, error) {
		s, ok := state.(*PaymentSuccess)
		if !ok {
			return nil, fmt.Errorf("%w: expected *PaymentSuccess, got %T", fsm.ErrStateTypeMismatch, state)
		}

		return s.Apply(action)
	}); err != nil {
		return nil, err
	}

	return registry, nil
}
