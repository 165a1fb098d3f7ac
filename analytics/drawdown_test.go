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

package analytics_test

import (
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliovault/fv-api/analytics"
	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
)

func dailyDates(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for ii := range dates {
		dates[ii] = start.AddDate(0, 0, ii)
	}
	return dates
}

var _ = Describe("When computing drawdowns", func() {
	var tz *time.Location

	BeforeEach(func() {
		tz = common.GetTimezone()
	})

	Context("with a holdings series", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = dataframe.New("STRATEGY",
				dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 4),
				[]float64{100, 120, 90, 110})
		})

		It("passes holdings through unchanged", func() {
			holdings, _, err := analytics.MaxDD(df, false)
			Expect(err).To(BeNil())
			Expect(holdings.Vals[0]).To(Equal([]float64{100, 120, 90, 110}))
		})

		It("computes the documented drawdown values", func() {
			_, drawdown, err := analytics.MaxDD(df, false)
			Expect(err).To(BeNil())
			Expect(drawdown.Vals[0][0]).To(Equal(0.0))
			Expect(drawdown.Vals[0][1]).To(Equal(0.0))
			Expect(drawdown.Vals[0][2]).To(BeNumerically("~", -0.25, 1e-9))
			Expect(drawdown.Vals[0][3]).To(BeNumerically("~", -0.0833333333, 1e-9))
		})

		It("shares the input's date index", func() {
			holdings, drawdown, err := analytics.MaxDD(df, false)
			Expect(err).To(BeNil())
			Expect(holdings.Dates).To(Equal(df.Dates))
			Expect(drawdown.Dates).To(Equal(df.Dates))
		})

		It("never yields a positive drawdown", func() {
			_, drawdown, err := analytics.MaxDD(df, false)
			Expect(err).To(BeNil())
			for _, value := range drawdown.Vals[0] {
				Expect(value).To(BeNumerically("<=", 0.0))
			}
		})

		It("yields zero drawdown at each new running peak", func() {
			_, drawdown, err := analytics.MaxDD(df, false)
			Expect(err).To(BeNil())
			peak := math.Inf(-1)
			for idx, value := range df.Vals[0] {
				if value >= peak {
					peak = value
					Expect(drawdown.Vals[0][idx]).To(Equal(0.0))
				}
			}
		})
	})

	Context("with a returns series", func() {
		var rets *dataframe.DataFrame

		BeforeEach(func() {
			rets = dataframe.New("STRATEGY",
				dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 5),
				[]float64{0.01, -0.02, 0.03, -0.01, 0.005})
		})

		It("compounds returns into a holdings trajectory", func() {
			holdings, _, err := analytics.MaxDD(rets, true)
			Expect(err).To(BeNil())
			Expect(holdings.Vals[0][0]).To(BeNumerically("~", 1.01, 1e-9))
			Expect(holdings.Vals[0][1]).To(BeNumerically("~", 1.01*0.98, 1e-9))
		})

		It("round-trips: drawdown from derived holdings matches", func() {
			holdings, drawdown, err := analytics.MaxDD(rets, true)
			Expect(err).To(BeNil())

			_, drawdown2, err := analytics.MaxDD(holdings, false)
			Expect(err).To(BeNil())

			for idx := range drawdown.Vals[0] {
				Expect(drawdown2.Vals[0][idx]).To(BeNumerically("~", drawdown.Vals[0][idx], 1e-12))
			}
		})
	})

	Context("with degenerate input", func() {
		It("yields zero drawdown for a single-point series", func() {
			df := dataframe.New("STRATEGY",
				[]time.Time{time.Date(2021, time.June, 1, 0, 0, 0, 0, tz)},
				[]float64{42.0})
			_, drawdown, err := analytics.MaxDD(df, false)
			Expect(err).To(BeNil())
			Expect(drawdown.Vals[0]).To(Equal([]float64{0.0}))
		})

		It("rejects an empty series", func() {
			_, _, err := analytics.MaxDD(&dataframe.DataFrame{}, false)
			Expect(errors.Is(err, analytics.ErrEmptySeries)).To(BeTrue())
			Expect(errors.Is(err, analytics.ErrInvalidInput)).To(BeTrue())
		})

		It("rejects a nil series", func() {
			_, _, err := analytics.MaxDD(nil, false)
			Expect(errors.Is(err, analytics.ErrEmptySeries)).To(BeTrue())
		})

		It("rejects NaN values", func() {
			df := dataframe.New("STRATEGY",
				dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 2),
				[]float64{1.0, math.NaN()})
			_, _, err := analytics.MaxDD(df, false)
			Expect(errors.Is(err, analytics.ErrNonFinite)).To(BeTrue())
			Expect(errors.Is(err, analytics.ErrInvalidInput)).To(BeTrue())
		})

		It("rejects infinite values", func() {
			df := dataframe.New("STRATEGY",
				dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 2),
				[]float64{1.0, math.Inf(1)})
			_, _, err := analytics.MaxDD(df, false)
			Expect(errors.Is(err, analytics.ErrNonFinite)).To(BeTrue())
		})
	})
})

var _ = Describe("When extracting drawdown episodes", func() {
	var (
		tz *time.Location
		df *dataframe.DataFrame
	)

	BeforeEach(func() {
		tz = common.GetTimezone()
		// two episodes: 100->90 (recovers at 105) and 105->84
		df = dataframe.New("STRATEGY",
			dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 6),
			[]float64{100, 90, 105, 84, 95, 101})
	})

	It("finds every episode", func() {
		drawDowns, err := analytics.DrawDowns(df)
		Expect(err).To(BeNil())
		Expect(len(drawDowns)).To(Equal(2))
	})

	It("records begin, trough, and recovery dates", func() {
		drawDowns, err := analytics.DrawDowns(df)
		Expect(err).To(BeNil())

		first := drawDowns[0]
		Expect(first.Begin).To(Equal(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz)))
		Expect(first.End).To(Equal(time.Date(2021, time.June, 2, 0, 0, 0, 0, tz)))
		Expect(first.Recovery).To(Equal(time.Date(2021, time.June, 3, 0, 0, 0, 0, tz)))
		Expect(first.LossPercent).To(BeNumerically("~", -0.10, 1e-9))
	})

	It("reports an unrecovered episode with a zero recovery time", func() {
		second, err := analytics.DrawDowns(df)
		Expect(err).To(BeNil())
		Expect(second[1].Recovery.IsZero()).To(BeTrue())
		Expect(second[1].LossPercent).To(BeNumerically("~", -0.20, 1e-9))
	})

	It("orders the top drawdowns from worst to best", func() {
		top, err := analytics.TopDrawDowns(df, 10)
		Expect(err).To(BeNil())
		Expect(len(top)).To(Equal(2))
		Expect(top[0].LossPercent).To(BeNumerically("<", top[1].LossPercent))
	})

	It("identifies the maximum drawdown episode", func() {
		maxDD, err := analytics.MaxDrawDownEpisode(df)
		Expect(err).To(BeNil())
		Expect(maxDD).NotTo(BeNil())
		Expect(maxDD.LossPercent).To(BeNumerically("~", -0.20, 1e-9))
	})

	It("returns nil for a series that never declines", func() {
		rising := dataframe.New("STRATEGY",
			dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 3),
			[]float64{1, 2, 3})
		maxDD, err := analytics.MaxDrawDownEpisode(rising)
		Expect(err).To(BeNil())
		Expect(maxDD).To(BeNil())
	})

	It("computes the average episode loss", func() {
		avg, err := analytics.AverageDrawDown(df)
		Expect(err).To(BeNil())
		Expect(avg).To(BeNumerically("~", -0.15, 1e-9))
	})
})

var _ = Describe("When computing the ulcer index", func() {
	var tz *time.Location

	BeforeEach(func() {
		tz = common.GetTimezone()
	})

	It("is zero for a monotonically rising series", func() {
		df := dataframe.New("STRATEGY",
			dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 14),
			[]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14})
		ui, err := analytics.UlcerIndex(df, 14)
		Expect(err).To(BeNil())
		Expect(ui).To(Equal(0.0))
	})

	It("is NaN when the series is shorter than the lookback", func() {
		df := dataframe.New("STRATEGY",
			dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 5),
			[]float64{1, 2, 3, 4, 5})
		ui, err := analytics.UlcerIndex(df, 14)
		Expect(err).To(BeNil())
		Expect(math.IsNaN(ui)).To(BeTrue())
	})

	It("increases with decline depth", func() {
		shallow := dataframe.New("STRATEGY",
			dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 4),
			[]float64{100, 99, 98, 97})
		deep := dataframe.New("STRATEGY",
			dailyDates(time.Date(2021, time.June, 1, 0, 0, 0, 0, tz), 4),
			[]float64{100, 90, 80, 70})

		uiShallow, err := analytics.UlcerIndex(shallow, 4)
		Expect(err).To(BeNil())
		uiDeep, err := analytics.UlcerIndex(deep, 4)
		Expect(err).To(BeNil())
		Expect(uiDeep).To(BeNumerically(">", uiShallow))
	})
})
