// Copyright 2022-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoHoldings      = errors.New("portfolio has no holdings")
	ErrPropertyMissing = errors.New("no holding has a value for the requested property")
	ErrInvalidValue    = errors.New("portfolio value must be a positive finite number")
)

// Holding is a single position within a portfolio. Properties carry
// per-position attributes like market cap or dividend yield that may be
// used to weight the portfolio.
type Holding struct {
	Ticker     string             `json:"ticker"`
	Properties map[string]float64 `json:"properties,omitempty"`
}

// Allocation maps a ticker to the dollar amount assigned to it.
type Allocation map[string]float64

// EqualWeights divides value evenly between all holdings. The per-holding
// fraction is rounded to 5 decimal places so allocations sum to a value a
// broker will accept; any residual from rounding is left uninvested.
func EqualWeights(holdings []*Holding, value float64) (Allocation, error) {
	if len(holdings) == 0 {
		return nil, ErrNoHoldings
	}
	if err := validateValue(value); err != nil {
		return nil, err
	}

	frac := math.Round(1/float64(len(holdings))*1e5) / 1e5
	alloc := make(Allocation, len(holdings))
	for _, h := range holdings {
		alloc[h.Ticker] = value * frac
	}
	return alloc, nil
}

// PropertyWeights allocates value in proportion to the named property of
// each holding. Holdings without the property contribute zero weight; if no
// holding carries the property the allocation is undefined and an error is
// returned.
func PropertyWeights(holdings []*Holding, property string, value float64) (Allocation, error) {
	if len(holdings) == 0 {
		return nil, ErrNoHoldings
	}
	if err := validateValue(value); err != nil {
		return nil, err
	}

	var total float64
	for _, h := range holdings {
		total += h.Properties[property]
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPropertyMissing, property)
	}

	alloc := make(Allocation, len(holdings))
	for _, h := range holdings {
		alloc[h.Ticker] = value * h.Properties[property] / total
	}
	return alloc, nil
}

// Tickers returns the allocation's tickers in ascending order.
func (a Allocation) Tickers() []string {
	tickers := make([]string, 0, len(a))
	for ticker := range a {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Total returns the sum of all allocated amounts.
func (a Allocation) Total() float64 {
	var total float64
	for _, v := range a {
		total += v
	}
	return total
}

func validateValue(value float64) error {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidValue
	}
	return nil
}
