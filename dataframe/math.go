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

package dataframe

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] += scalar
		}
	}
	return df
}

// AddVec adds the vector to all columns in dataframe and returns a new dataframe
// panics if rows are not equal.
func (df *DataFrame) AddVec(vec []float64) *DataFrame {
	df = df.Copy()
	for idx := range df.ColNames {
		floats.Add(df.Vals[idx], vec)
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] *= scalar
		}
	}
	return df
}

// CumProd1p cumulatively compounds each column as a series of period returns:
// out[0] = 1 + in[0]; out[i] = out[i-1] * (1 + in[i]). Returns a new dataframe.
func (df *DataFrame) CumProd1p() *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		acc := 1.0
		for rowIdx := range df.Vals[colIdx] {
			acc *= 1.0 + df.Vals[colIdx][rowIdx]
			df.Vals[colIdx][rowIdx] = acc
		}
	}
	return df
}

// PctChange computes the percent change of each column from the prior row and
// returns a new dataframe; the first row is dropped since it has no prior value.
// When logReturns is true the natural log of the price relative is used instead
// of the arithmetic change.
func (df *DataFrame) PctChange(logReturns bool) *DataFrame {
	newDf := &DataFrame{
		ColNames: df.ColNames,
		Vals:     make([][]float64, len(df.Vals)),
	}

	if df.Len() < 2 {
		newDf.Dates = []time.Time{}
		for colIdx := range newDf.Vals {
			newDf.Vals[colIdx] = []float64{}
		}
		return newDf
	}

	newDf.Dates = make([]time.Time, df.Len()-1)
	copy(newDf.Dates, df.Dates[1:])

	for colIdx := range df.Vals {
		col := df.Vals[colIdx]
		rets := make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			if logReturns {
				rets[rowIdx-1] = math.Log(col[rowIdx] / col[rowIdx-1])
			} else {
				rets[rowIdx-1] = col[rowIdx]/col[rowIdx-1] - 1.0
			}
		}
		newDf.Vals[colIdx] = rets
	}

	return newDf
}
