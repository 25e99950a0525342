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

// Package risk holds the pure numeric helpers of the payment domain:
// entry-mode risk scoring, fee schedules, card number validation and batch
// statistics. Nothing here touches the state runtime or holds locks.
package risk

import (
	"errors"
	"math"
	"strings"
)

// EntryMode is how the card data entered the terminal.
type EntryMode string

const (
	EntryTap    EntryMode = "tap"
	EntryChip   EntryMode = "chip"
	EntrySwipe  EntryMode = "swipe"
	EntryManual EntryMode = "manual"
)

// ApprovalThreshold is the minimum score at which a payment is approved
// without additional verification.
const ApprovalThreshold = 0.35

// ErrUnknownEntryMode is returned for entry modes outside the schedule.
var ErrUnknownEntryMode = errors.New("unknown entry mode")

// entryWeights maps each entry mode to its trust weight. Chip reads carry
// the strongest cryptographic evidence, manual entry the weakest.
var entryWeights = map[EntryMode]float64{
	EntryTap:    0.85,
	EntryChip:   0.90,
	EntrySwipe:  0.70,
	EntryManual: 0.60,
}

// Score computes the risk score for a payment: the entry-mode weight scaled
// by the amount-to-total ratio |amount/(total+1)|, capped at 1. Outsized
// tips shrink the ratio and pull the score below the approval threshold.
func Score(amount, tip float64, mode EntryMode) (float64, error) {
	weight, ok := entryWeights[mode]
	if !ok {
		return 0, ErrUnknownEntryMode
	}

	total := amount + tip
	if total <= 0 {
		return 0, errors.New("total amount must be positive")
	}

	ratio := math.Abs(amount / (total + 1))
	if ratio > 1 {
		ratio = 1
	}

	return ratio * weight, nil
}

// Approved reports whether a score clears the approval threshold.
func Approved(score float64) bool {
	return score >= ApprovalThreshold
}

// DescribeMode returns a short human-readable description of an entry mode.
func DescribeMode(mode EntryMode) string {
	switch mode {
	case EntryTap:
		return "contactless tap"
	case EntryChip:
		return "chip insert"
	case EntrySwipe:
		return "magnetic stripe swipe"
	case EntryManual:
		return "manual key entry"
	default:
		return "unknown entry mode"
	}
}

// ValidateCardNumber checks a card number with the Luhn algorithm. Spaces
// and dashes are ignored; anything else non-numeric fails.
func ValidateCardNumber(number string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}

		return r
	}, number)

	if len(cleaned) < 12 || len(cleaned) > 19 {
		return false
	}

	sum := 0
	double := false

	for i := len(cleaned) - 1; i >= 0; i-- {
		c := cleaned[i]
		if c < '0' || c > '9' {
			return false
		}

		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		double = !double
	}

	return sum%10 == 0
}

// Fee returns the processing fee for a payment: a per-mode percentage plus
// a fixed component.
func Fee(amount float64, mode EntryMode) (float64, error) {
	var rate, fixed float64

	switch mode {
	case EntryTap, EntryChip:
		rate, fixed = 0.015, 0.10
	case EntrySwipe:
		rate, fixed = 0.020, 0.10
	case EntryManual:
		rate, fixed = 0.029, 0.30
	default:
		return 0, ErrUnknownEntryMode
	}

	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}

	return amount*rate + fixed, nil
}

// BatchStats summarizes a settlement batch.
type BatchStats struct {
	Count int
	Total float64
	Mean  float64
	Min   float64
	Max   float64
}

// Batch computes summary statistics over a batch of amounts. An empty
// batch yields the zero value.
func Batch(amounts []float64) BatchStats {
	if len(amounts) == 0 {
		return BatchStats{}
	}

	stats := BatchStats{
		Count: len(amounts),
		Min:   amounts[0],
		Max:   amounts[0],
	}

	for _, a := range amounts {
		stats.Total += a
		stats.Min = math.Min(stats.Min, a)
		stats.Max = math.Max(stats.Max, a)
	}

	stats.Mean = stats.Total / float64(stats.Count)

	return stats
}
