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

package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
)

// loadSeriesCSV reads a two column CSV of date,value rows. A header row is
// skipped if the second field does not parse as a number.
func loadSeriesCSV(fn string, colName string) (*dataframe.DataFrame, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	records, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		return nil, err
	}

	tz := common.GetTimezone()
	dates := make([]time.Time, 0, len(records))
	vals := make([]float64, 0, len(records))
	for idx, record := range records {
		if len(record) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 fields, got %d", idx+1, len(record))
		}

		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			if idx == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("row %d: %w", idx+1, err)
		}

		dt, err := time.ParseInLocation("2006-01-02", record[0], tz)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx+1, err)
		}

		dates = append(dates, dt)
		vals = append(vals, v)
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("%s contains no data rows", fn)
	}

	return dataframe.New(colName, dates, vals), nil
}
