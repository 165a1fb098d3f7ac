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

package handler

import (
	"errors"
	"time"

	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
)

var errSeriesMismatch = errors.New("dates and values must have the same length")

// seriesJSON is the wire format for a time series. Dates use the
// YYYY-MM-DD layout and are interpreted in the market timezone.
type seriesJSON struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

func (s *seriesJSON) toDataFrame(colName string) (*dataframe.DataFrame, error) {
	if len(s.Dates) != len(s.Values) {
		return nil, errSeriesMismatch
	}

	tz := common.GetTimezone()
	dates := make([]time.Time, 0, len(s.Dates))
	for _, str := range s.Dates {
		dt, err := time.ParseInLocation("2006-01-02", str, tz)
		if err != nil {
			return nil, err
		}
		dates = append(dates, dt)
	}

	return dataframe.New(colName, dates, append([]float64{}, s.Values...)), nil
}

func seriesFromDataFrame(df *dataframe.DataFrame) *seriesJSON {
	s := &seriesJSON{
		Dates:  make([]string, 0, df.Len()),
		Values: append([]float64{}, df.Vals[0]...),
	}
	for _, dt := range df.Dates {
		s.Dates = append(s.Dates, dt.Format("2006-01-02"))
	}
	return s
}
