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
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
	"github.com/united-manufacturing-hub/payment-core/pkg/metrics"
	"github.com/united-manufacturing-hub/payment-core/pkg/sentry"
)

// Manager is the single authoritative owner of the current state value and
// its tag. The pair lives under one RWMutex, so no reader can ever observe a
// tag that does not match the stored value.
//
// The manager stores the state type-erased and routes every action through
// the registry. It never constructs states; the outgoing state constructs
// its successor and the manager swaps it in wholesale.
type Manager struct {
	state     any
	registry  *Registry
	stream    *EventStream
	logger    *zap.SugaredLogger
	stateType StateType

	// mu guards the (state, stateType) pair as a unit.
	mu sync.RWMutex
}

// NewManager creates a manager seeded with exactly one state value/tag pair.
// The initial value is trusted. The returned EventStream is the receive
// endpoint for transition events; all facade clones share it.
func NewManager(initialState any, initialType StateType, registry *Registry, log *zap.SugaredLogger) (*Manager, *EventStream) {
	if log == nil {
		log = logger.For(logger.ComponentStateManager)
	}

	stream := newEventStream()
	manager := &Manager{
		state:     initialState,
		stateType: initialType,
		registry:  registry,
		stream:    stream,
		logger:    log,
	}

	metrics.SetCurrentState(initialType.Code())

	return manager, stream
}

// Execute submits one action of any concrete type to the currently active
// state. The registry decides how the action is routed; the current state
// decides whether to mutate in place or hand over to a successor.
//
// Exactly one TransitionEvent is enqueued per committed transition, in commit
// order (the enqueue happens under the same exclusive lock as the swap).
// Non-transitioning calls emit nothing.
func (m *Manager) Execute(ctx context.Context, action any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	defer func() {
		metrics.ObserveExecuteTime(metrics.ComponentStateManager, time.Since(start))
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	currentType := m.stateType

	dispatch, ok := m.registry.Lookup(currentType)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnregisteredState, currentType)
		metrics.IncErrorCount(metrics.ComponentStateManager, "unregistered_state")
		sentry.ReportStateMachineError(m.logger, string(currentType), "execute", err)

		return "", err
	}

	transition, err := dispatch(m.state, action)
	if err != nil {
		m.countDispatchError(currentType, err)

		return "", err
	}

	if transition == nil {
		return "action executed, state unchanged", nil
	}

	m.state = transition.Next
	m.stateType = transition.NextType

	event := NewTransitionEvent(currentType, transition.NextType)
	metrics.IncTransitionCount(string(event.FromState), string(event.ToState))
	metrics.SetCurrentState(transition.NextType.Code())

	// Publish never blocks, so it is safe under the lock; doing it here keeps
	// stream order identical to commit order.
	if !m.stream.publish(event) {
		m.logger.Warnf("Transition %s -> %s committed but event dropped, stream closed",
			event.FromState, event.ToState)
	}

	m.logger.Debugf("Transitioned from %s to %s", event.FromState, event.ToState)

	return fmt.Sprintf("transitioned to %s", transition.NextType), nil
}

// countDispatchError records metrics for a failed dispatch and escalates
// invariant breaches. Domain errors from states pass through untouched.
func (m *Manager) countDispatchError(currentType StateType, err error) {
	switch {
	case IsStateTypeMismatch(err):
		metrics.IncErrorCount(metrics.ComponentStateManager, "state_type_mismatch")
		sentry.ReportStateMachineError(m.logger, string(currentType), "dispatch", err)
	case IsIncompatibleAction(err):
		metrics.IncErrorCount(metrics.ComponentStateManager, "incompatible_action")
	default:
		metrics.IncErrorCount(metrics.ComponentStateManager, "domain_error")
	}
}

// CurrentStateType returns the tag of the currently active state.
func (m *Manager) CurrentStateType() StateType {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stateType
}

// Inspect runs a read-only projection against the live (state, tag) pair
// under a single read lock. Callers that need both the tag and the value
// use this so a transition cannot land between the two reads.
func (m *Manager) Inspect(project func(stateType StateType, state any) (string, error)) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return project(m.stateType, m.state)
}

// Describe views the live state as S and applies the caller-supplied
// projection. It is read-only and fails with ErrStateTypeMismatch when the
// live value is a different concrete type.
func Describe[S any](m *Manager, project func(*S) string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.state.(*S)
	if !ok {
		return "", fmt.Errorf("%w: live state is %s", ErrStateTypeMismatch, m.stateType)
	}

	return project(state), nil
}
