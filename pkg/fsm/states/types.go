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

// Package states contains the concrete payment states and their actions.
//
// All three states live in one package because each state constructs its own
// successor: AwaitingInfo builds EMVPayment, EMVPayment builds PaymentSuccess
// and a fresh AwaitingInfo on cancel. The runtime in pkg/fsm knows none of
// these types; the wiring happens exclusively through NewRegistry.
package states

import "fmt"

// PaymentMethod is the payment method selected by the user.
type PaymentMethod string

const (
	MethodDebit  PaymentMethod = "Debit"
	MethodCredit PaymentMethod = "Credit"
)

// Valid reports whether the method is a known one.
func (m PaymentMethod) Valid() bool {
	return m == MethodDebit || m == MethodCredit
}

// PaymentInfo is the confirmed information required to start a payment.
type PaymentInfo struct {
	Method PaymentMethod
	Amount float64
}

// EMVResult holds the outcome of EMV processing.
type EMVResult struct {
	TransactionID     string `json:"transaction_id"`
	AuthorizationCode string `json:"authorization_code"`
	Timestamp         string `json:"timestamp"`
}

func (r EMVResult) String() string {
	return fmt.Sprintf("transaction %s (auth %s)", r.TransactionID, r.AuthorizationCode)
}
