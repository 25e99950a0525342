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
	"sync"

	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
	"github.com/united-manufacturing-hub/payment-core/pkg/metrics"
)

// Registry maps a StateType to the DispatchFunc that routes actions to the
// concrete state behind that tag.
//
// The registry is an explicit value passed into NewManager, not a process
// global. Registration is write-once per tag and fails loudly on duplicates,
// so a bootstrap path that runs twice cannot silently shadow wiring.
// Registration during bootstrap may race; lookups afterwards are read-mostly.
type Registry struct {
	entries map[StateType]DispatchFunc
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[StateType]DispatchFunc),
	}
}

// Register associates a tag with its routing function.
// Returns ErrAlreadyRegistered if the tag already has an entry.
func (r *Registry) Register(stateType StateType, dispatch DispatchFunc) error {
	if dispatch == nil {
		return fmt.Errorf("dispatch function for %s is nil", stateType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[stateType]; exists {
		metrics.IncErrorCount(metrics.ComponentRegistry, "duplicate_registration")

		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, stateType)
	}

	r.entries[stateType] = dispatch
	logger.For(logger.ComponentRegistry).Debugf("Registered dispatch function for state %s", stateType)

	return nil
}

// Lookup returns the routing function for a tag.
func (r *Registry) Lookup(stateType StateType) (DispatchFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dispatch, ok := r.entries[stateType]

	return dispatch, ok
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
