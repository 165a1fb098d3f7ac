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

	"github.com/foliovault/fv-api/dataframe"
)

var ErrTooFewObservations = errors.New("at least two prices are required to compute returns")

// PriceReturns converts a price series to a simple return series. The first
// observation is consumed by the differencing so the result is one row
// shorter than the input.
func PriceReturns(prices *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if prices == nil || prices.Len() < 2 {
		return nil, ErrTooFewObservations
	}
	return prices.PctChange(false), nil
}

// LogReturns converts a price series to a continuously compounded return
// series.
func LogReturns(prices *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if prices == nil || prices.Len() < 2 {
		return nil, ErrTooFewObservations
	}
	return prices.PctChange(true), nil
}
