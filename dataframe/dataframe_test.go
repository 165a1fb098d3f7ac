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

package dataframe_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
)

var _ = Describe("DataFrame", func() {
	var tz *time.Location

	BeforeEach(func() {
		tz = common.GetTimezone()
	})

	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("returns the zero time for start and end", func() {
			Expect(df.Start()).To(Equal(time.Time{}))
			Expect(df.End()).To(Equal(time.Time{}))
		})

		It("does not error on drop", func() {
			df = df.Drop(1)
			Expect(df.Len()).To(Equal(0))
		})

		It("renders a placeholder table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})
	})

	Context("with a single column of daily values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = dataframe.New("VFINX", []time.Time{
				time.Date(2022, time.December, 30, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 3, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 4, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 31, 0, 0, 0, 0, tz),
				time.Date(2023, time.February, 1, 0, 0, 0, 0, tz),
			}, []float64{1.0, 2.0, 3.0, 4.0, 5.0})
		})

		It("knows its length and bounds", func() {
			Expect(df.Len()).To(Equal(5))
			Expect(df.Start()).To(Equal(time.Date(2022, time.December, 30, 0, 0, 0, 0, tz)))
			Expect(df.End()).To(Equal(time.Date(2023, time.February, 1, 0, 0, 0, 0, tz)))
		})

		It("looks up columns by name", func() {
			Expect(df.ColIndex("VFINX")).To(Equal(0))
			Expect(df.ColIndex("PRIDX")).To(Equal(-1))
			Expect(df.Col("VFINX")).To(Equal([]float64{1.0, 2.0, 3.0, 4.0, 5.0}))
			Expect(df.Col("PRIDX")).To(BeNil())
		})

		It("copies without aliasing", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 99.0
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("trims to an inclusive date range", func() {
			df2 := df.Trim(
				time.Date(2023, time.January, 3, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 31, 0, 0, 0, 0, tz))
			Expect(df2.Len()).To(Equal(3))
			Expect(df2.Vals[0]).To(Equal([]float64{2.0, 3.0, 4.0}))
		})

		It("trims to empty when the range precedes the data", func() {
			df2 := df.Trim(
				time.Date(2020, time.January, 1, 0, 0, 0, 0, tz),
				time.Date(2020, time.December, 31, 0, 0, 0, 0, tz))
			Expect(df2.Len()).To(Equal(0))
		})

		It("trims to empty when begin is after end", func() {
			df2 := df.Trim(
				time.Date(2023, time.January, 31, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 3, 0, 0, 0, 0, tz))
			Expect(df2.Len()).To(Equal(0))
		})

		It("keeps the last observation of each month at MonthEnd frequency", func() {
			df2 := df.Frequency(dataframe.MonthEnd)
			Expect(df2.Dates).To(Equal([]time.Time{
				time.Date(2022, time.December, 30, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 31, 0, 0, 0, 0, tz),
				time.Date(2023, time.February, 1, 0, 0, 0, 0, tz),
			}))
			Expect(df2.Vals[0]).To(Equal([]float64{1.0, 4.0, 5.0}))
		})

		It("keeps the first observation of each month at MonthBegin frequency", func() {
			df2 := df.Frequency(dataframe.MonthBegin)
			Expect(df2.Dates).To(Equal([]time.Time{
				time.Date(2022, time.December, 30, 0, 0, 0, 0, tz),
				time.Date(2023, time.January, 3, 0, 0, 0, 0, tz),
				time.Date(2023, time.February, 1, 0, 0, 0, 0, tz),
			}))
			Expect(df2.Vals[0]).To(Equal([]float64{1.0, 2.0, 5.0}))
		})

		It("returns all rows at Daily frequency", func() {
			df2 := df.Frequency(dataframe.Daily)
			Expect(df2.Len()).To(Equal(5))
		})

		It("returns the last row", func() {
			df2 := df.Last()
			Expect(df2.Len()).To(Equal(1))
			Expect(df2.Vals[0]).To(Equal([]float64{5.0}))
		})

		It("inserts a new row at the end", func() {
			df.InsertRow(time.Date(2023, time.February, 2, 0, 0, 0, 0, tz), 6.0)
			Expect(df.Len()).To(Equal(6))
			Expect(df.Vals[0][5]).To(Equal(6.0))
		})
	})
})
