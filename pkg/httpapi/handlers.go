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

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
	"github.com/united-manufacturing-hub/payment-core/pkg/fsm/states"
	"github.com/united-manufacturing-hub/payment-core/pkg/metrics"
)

// Action names accepted by POST /v1/actions/:name.
const (
	ActionSetAmount        = "set_amount"
	ActionSetPaymentMethod = "set_payment_method"
	ActionConfirmInfo      = "confirm_info"
	ActionProcessPayment   = "process_payment"
	ActionCompletePayment  = "complete_payment"
	ActionCancelPayment    = "cancel_payment"
	ActionReset            = "reset"
)

// eventAwaitTimeout bounds GET /v1/events/next so a consumer without
// traffic does not hold a connection forever.
const eventAwaitTimeout = 60 * time.Second

type actionRequest struct {
	Amount            float64 `json:"amount,omitempty"`
	Method            string  `json:"method,omitempty"`
	TransactionID     string  `json:"transaction_id,omitempty"`
	AuthorizationCode string  `json:"authorization_code,omitempty"`
}

type actionResponse struct {
	Message string `json:"message"`
	State   string `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAction(c *gin.Context) {
	name := c.Param("name")

	var req actionRequest

	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})

			return
		}
	}

	ctx := c.Request.Context()

	var (
		msg string
		err error
	)

	switch name {
	case ActionSetAmount:
		msg, err = s.engine.SetAmount(ctx, req.Amount)
	case ActionSetPaymentMethod:
		msg, err = s.engine.SetPaymentMethod(ctx, states.PaymentMethod(req.Method))
	case ActionConfirmInfo:
		msg, err = s.engine.ConfirmInfo(ctx)
	case ActionProcessPayment:
		msg, err = s.engine.ProcessPayment(ctx)
	case ActionCompletePayment:
		msg, err = s.engine.CompletePayment(ctx, req.TransactionID, req.AuthorizationCode)
	case ActionCancelPayment:
		msg, err = s.engine.CancelPayment(ctx)
	case ActionReset:
		msg, err = s.engine.Reset(ctx)
	default:
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown action: " + name})

		return
	}

	if err != nil {
		metrics.IncErrorCount(metrics.ComponentHTTPAPI, reasonForError(err))
		c.JSON(statusForError(err), errorResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, actionResponse{
		Message: msg,
		State:   string(s.engine.CurrentState()),
	})
}

func (s *Server) handleState(c *gin.Context) {
	snapshot, err := s.engine.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":    string(snapshot.StateType),
		"taken_at": snapshot.TakenAt.Format(time.RFC3339Nano),
		"detail":   snapshot.State,
	})
}

func (s *Server) handleDescription(c *gin.Context) {
	description, err := s.engine.Description()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"description": description})
}

// handleEventNext blocks until a transition event is available or the await
// timeout elapses (204 then, so pollers can distinguish "nothing yet" from
// an error).
func (s *Server) handleEventNext(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), eventAwaitTimeout)
	defer cancel()

	event, err := s.engine.NextEvent(ctx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			c.Status(http.StatusNoContent)
		case fsm.IsStreamClosed(err):
			c.JSON(http.StatusGone, errorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}

		return
	}

	writeEvent(c, event)
}

func (s *Server) handleEventPoll(c *gin.Context) {
	event, ok, err := s.engine.TryNextEvent()
	if err != nil {
		c.JSON(http.StatusGone, errorResponse{Error: err.Error()})

		return
	}

	if !ok {
		c.Status(http.StatusNoContent)

		return
	}

	writeEvent(c, event)
}

func writeEvent(c *gin.Context, event fsm.TransitionEvent) {
	data, err := event.JSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})

		return
	}

	c.Data(http.StatusOK, "application/json", []byte(data))
}

// statusForError maps runtime errors to HTTP status codes. Domain
// rejections are client errors; invariant breaches are server errors.
func statusForError(err error) int {
	switch {
	case fsm.IsValidationError(err):
		return http.StatusBadRequest
	case fsm.IsPreconditionError(err):
		return http.StatusConflict
	case fsm.IsIncompatibleAction(err):
		return http.StatusConflict
	case fsm.IsUnregisteredState(err), fsm.IsStateTypeMismatch(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// reasonForError gives each rejection class a stable metric label.
func reasonForError(err error) string {
	switch {
	case fsm.IsValidationError(err):
		return "validation"
	case fsm.IsPreconditionError(err):
		return "precondition"
	case fsm.IsIncompatibleAction(err):
		return "incompatible_action"
	default:
		return "internal"
	}
}
