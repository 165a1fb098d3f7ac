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

package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/foliovault/fv-api/dataframe"
)

// DrawDown describes a single episode in which a holdings series falls from its
// previous peak. Begin is the date of the peak, End the date of the trough, and
// Recovery the date the series regained its peak; Recovery is the zero time if
// the series never recovered. LossPercent is expressed as a negative fraction.
type DrawDown struct {
	Begin       time.Time `json:"begin"`
	End         time.Time `json:"end"`
	Recovery    time.Time `json:"recovery"`
	LossPercent float64   `json:"lossPercent"`
}

// MaxDD computes the holdings and drawdown series for the given input. If
// isReturns is true, the input values are treated as period returns and are
// compounded cumulatively into a holdings trajectory starting at one unit;
// otherwise the values are used directly as holdings. The drawdown at each
// point is the percent decline from the running maximum and is always <= 0.
func MaxDD(series *dataframe.DataFrame, isReturns bool) (*dataframe.DataFrame, *dataframe.DataFrame, error) {
	if err := validate(series); err != nil {
		return nil, nil, err
	}

	var holdings *dataframe.DataFrame
	if isReturns {
		holdings = series.CumProd1p()
	} else {
		holdings = series.Copy()
	}

	drawdown := &dataframe.DataFrame{
		Dates:    holdings.Dates,
		ColNames: holdings.ColNames,
		Vals:     make([][]float64, len(holdings.Vals)),
	}

	for colIdx, col := range holdings.Vals {
		dd := make([]float64, len(col))
		peak := col[0]
		for rowIdx, value := range col {
			peak = math.Max(peak, value)
			dd[rowIdx] = (value - peak) / peak
		}
		drawdown.Vals[colIdx] = dd
	}

	return holdings, drawdown, nil
}

// DrawDowns computes all drawdown episodes of the first column of the holdings
// series. An episode opens when the series falls below its previous peak and
// closes when it recovers; an episode still open at the end of the series is
// reported with a zero Recovery time.
func DrawDowns(holdings *dataframe.DataFrame) ([]*DrawDown, error) {
	if err := validate(holdings); err != nil {
		return nil, err
	}

	allDrawDowns := []*DrawDown{}
	col := holdings.Vals[0]

	peak := col[0]
	var drawDown *DrawDown
	prev := holdings.Dates[0]
	for idx, value := range col {
		peak = math.Max(peak, value)
		diff := value - peak
		if diff < 0 {
			if drawDown == nil {
				drawDown = &DrawDown{
					Begin:       prev,
					End:         holdings.Dates[idx],
					LossPercent: value/peak - 1.0,
				}
			}

			loss := value/peak - 1.0
			if loss < drawDown.LossPercent {
				drawDown.End = holdings.Dates[idx]
				drawDown.LossPercent = loss
			}
		} else if drawDown != nil {
			drawDown.Recovery = holdings.Dates[idx]
			allDrawDowns = append(allDrawDowns, drawDown)
			drawDown = nil
		}
		prev = holdings.Dates[idx]
	}

	// episode still open at the end of the series
	if drawDown != nil {
		allDrawDowns = append(allDrawDowns, drawDown)
	}

	return allDrawDowns, nil
}

// TopDrawDowns returns the n largest drawdown episodes ordered from worst to best
func TopDrawDowns(holdings *dataframe.DataFrame, n int) ([]*DrawDown, error) {
	allDrawDowns, err := DrawDowns(holdings)
	if err != nil {
		return nil, err
	}

	sort.Slice(allDrawDowns, func(i, j int) bool {
		return allDrawDowns[i].LossPercent < allDrawDowns[j].LossPercent
	})

	return allDrawDowns[0:minInt(n, len(allDrawDowns))], nil
}

// MaxDrawDownEpisode returns the single largest drawdown episode, or nil if the
// series never declined from a peak
func MaxDrawDownEpisode(holdings *dataframe.DataFrame) (*DrawDown, error) {
	top, err := TopDrawDowns(holdings, 1)
	if err != nil {
		return nil, err
	}

	if len(top) == 0 {
		return nil, nil
	}
	return top[0], nil
}

// AverageDrawDown computes the mean loss over all drawdown episodes; NaN when
// there are no episodes
func AverageDrawDown(holdings *dataframe.DataFrame) (float64, error) {
	allDrawDowns, err := DrawDowns(holdings)
	if err != nil {
		return math.NaN(), err
	}

	if len(allDrawDowns) == 0 {
		return math.NaN(), nil
	}

	dd := make([]float64, len(allDrawDowns))
	for ii, xx := range allDrawDowns {
		dd[ii] = xx.LossPercent
	}
	return stat.Mean(dd, nil), nil
}

// UlcerIndex measures downside risk in terms of both the depth and duration of
// declines from the running peak over the trailing lookback period.
//
// Percentage Drawdown = [(Close - period High Close)/period High Close] x 100
// Squared Average = (Sum of Percentage Drawdown Squared)/period
// Ulcer Index = Square Root of Squared Average
func UlcerIndex(holdings *dataframe.DataFrame, lookback int) (float64, error) {
	if err := validate(holdings); err != nil {
		return math.NaN(), err
	}

	col := holdings.Vals[0]
	if len(col) < lookback || lookback < 1 {
		return math.NaN(), nil
	}

	window := col[len(col)-lookback:]

	maxClose := window[0]
	var sqSum float64
	for _, yy := range window {
		if yy > maxClose {
			maxClose = yy
		}
		percentDrawDown := ((yy - maxClose) / maxClose) * 100
		sqSum += percentDrawDown * percentDrawDown
	}
	sqAvg := sqSum / float64(lookback)
	return math.Sqrt(sqAvg), nil
}

// validate checks the input constraints shared by every calculation: the series
// must be non-empty and every value finite
func validate(series *dataframe.DataFrame) error {
	if series == nil || series.Len() == 0 || series.ColCount() == 0 {
		return ErrEmptySeries
	}

	for _, col := range series.Vals {
		for _, value := range col {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return ErrNonFinite
			}
		}
	}

	return nil
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}
