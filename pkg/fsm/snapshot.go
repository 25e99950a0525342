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

import (
	"fmt"
	"reflect"
	"time"

	"github.com/tiendc/go-deepcopy"
)

// StateSnapshot is an immutable, deep-copied view of the current state.
// Hosts may inspect it freely without aliasing the live value.
type StateSnapshot struct {
	TakenAt   time.Time
	State     any
	StateType StateType
}

// Snapshot returns a deep copy of the current state value together with its
// tag. The copy is taken under the read lock, so the pair is consistent.
func (m *Manager) Snapshot() (StateSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	copied, err := deepCopyState(m.state)
	if err != nil {
		return StateSnapshot{}, fmt.Errorf("failed to snapshot state %s: %w", m.stateType, err)
	}

	return StateSnapshot{
		StateType: m.stateType,
		State:     copied,
		TakenAt:   time.Now(),
	}, nil
}

// deepCopyState copies a type-erased state value. States are stored as
// pointers to structs, so the copy is allocated via reflection and filled by
// the deepcopy library.
func deepCopyState(state any) (any, error) {
	if state == nil {
		return nil, nil
	}

	value := reflect.ValueOf(state)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return nil, fmt.Errorf("state value %T is not a non-nil pointer", state)
	}

	target := reflect.New(value.Type().Elem())
	if err := deepcopy.Copy(target.Interface(), state); err != nil {
		return nil, err
	}

	return target.Interface(), nil
}
