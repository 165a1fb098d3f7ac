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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/foliovault/fv-api/dataframe"
)

// MonthKey identifies a single calendar month
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthlyReturnTable maps calendar months to the compounded return of all
// period returns falling in that month. The table is sparse: a month with no
// observations has no entry, never a synthetic zero.
type MonthlyReturnTable struct {
	Window  string
	Returns map[MonthKey]float64
}

// MonthlyReturns buckets a series of period returns by calendar month and
// compounds the returns within each bucket: (1+r1)*(1+r2)*...-1. The window
// token restricts the series to a trailing period anchored at the last date
// before grouping; see windowStart for the recognized tokens.
func MonthlyReturns(returns *dataframe.DataFrame, window string) (*MonthlyReturnTable, error) {
	if err := validate(returns); err != nil {
		return nil, err
	}

	begin, err := windowStart(window, returns.End())
	if err != nil {
		return nil, err
	}

	restricted := returns
	if !begin.IsZero() {
		restricted = returns.Trim(begin, returns.End())
	}

	if restricted.Len() == 0 {
		return nil, ErrEmptySeries
	}

	table := &MonthlyReturnTable{
		Window:  window,
		Returns: make(map[MonthKey]float64),
	}

	col := restricted.Vals[0]
	for idx, dt := range restricted.Dates {
		key := MonthKey{Year: dt.Year(), Month: dt.Month()}
		acc, ok := table.Returns[key]
		if !ok {
			acc = 0.0
		}
		table.Returns[key] = (1.0+acc)*(1.0+col[idx]) - 1.0
	}

	return table, nil
}

// Keys returns the months present in the table in chronological order
func (table *MonthlyReturnTable) Keys() []MonthKey {
	keys := make([]MonthKey, 0, len(table.Returns))
	for key := range table.Returns {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})

	return keys
}

// Years returns the distinct years present in the table in ascending order
func (table *MonthlyReturnTable) Years() []int {
	seen := make(map[int]bool)
	years := make([]int, 0, 10)
	for key := range table.Returns {
		if !seen[key.Year] {
			seen[key.Year] = true
			years = append(years, key.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Annual compounds each year's monthly returns into an annual return
func (table *MonthlyReturnTable) Annual() map[int]float64 {
	annual := make(map[int]float64)
	for key, ret := range table.Returns {
		acc, ok := annual[key.Year]
		if !ok {
			acc = 0.0
		}
		annual[key.Year] = (1.0+acc)*(1.0+ret) - 1.0
	}
	return annual
}

// BestMonth returns the month with the highest return; ok is false for an
// empty table
func (table *MonthlyReturnTable) BestMonth() (MonthKey, float64, bool) {
	return table.extreme(func(candidate, current float64) bool { return candidate > current })
}

// WorstMonth returns the month with the lowest return; ok is false for an
// empty table
func (table *MonthlyReturnTable) WorstMonth() (MonthKey, float64, bool) {
	return table.extreme(func(candidate, current float64) bool { return candidate < current })
}

func (table *MonthlyReturnTable) extreme(better func(candidate, current float64) bool) (MonthKey, float64, bool) {
	var (
		bestKey MonthKey
		bestVal float64
		found   bool
	)

	// iterate chronologically so ties resolve to the earliest month
	for _, key := range table.Keys() {
		val := table.Returns[key]
		if !found || better(val, bestVal) {
			bestKey = key
			bestVal = val
			found = true
		}
	}

	return bestKey, bestVal, found
}

// Table renders an ASCII formatted table with one row per year and one column
// per calendar month; absent months are rendered as "--"
func (table *MonthlyReturnTable) Table() string {
	if len(table.Returns) == 0 {
		return "<NO DATA>"
	}

	header := []string{"Year", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Annual"}

	s := &strings.Builder{}
	w := tablewriter.NewWriter(s)
	w.SetHeader(header)
	w.SetBorder(false)

	annual := table.Annual()
	for _, year := range table.Years() {
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%d", year))
		for month := time.January; month <= time.December; month++ {
			if ret, ok := table.Returns[MonthKey{Year: year, Month: month}]; ok {
				row = append(row, fmt.Sprintf("%.2f%%", ret*100))
			} else {
				row = append(row, "--")
			}
		}
		row = append(row, fmt.Sprintf("%.2f%%", annual[year]*100))
		w.Append(row)
	}

	w.Render()
	return s.String()
}
