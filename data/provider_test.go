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

package data_test

import (
	"context"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/data"
)

var _ = Describe("Provider", func() {
	var (
		ctx      context.Context
		provider *data.Provider
		begin    time.Time
		end      time.Time
		tz       *time.Location
	)

	BeforeEach(func() {
		httpmock.Activate()
		ctx = context.Background()
		tz = common.GetTimezone()
		provider = data.NewProvider("TEST")
		begin = time.Date(2023, 6, 1, 0, 0, 0, 0, tz)
		end = time.Date(2023, 6, 5, 0, 0, 0, 0, tz)
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Describe("DailyPrices", func() {
		Context("with a single ticker", func() {
			BeforeEach(func() {
				httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/VFINX/prices?startDate=2023-06-01&endDate=2023-06-05&resampleFreq=daily&token=TEST",
					httpmock.NewStringResponder(200, `[
						{"date":"2023-06-01T00:00:00.000Z","close":100,"adjClose":100,"divCash":0,"splitFactor":1},
						{"date":"2023-06-02T00:00:00.000Z","close":110,"adjClose":110,"divCash":0,"splitFactor":1},
						{"date":"2023-06-05T00:00:00.000Z","close":99,"adjClose":99,"divCash":0,"splitFactor":1}
					]`))
			})

			It("loads the adjusted close series", func() {
				df, err := provider.DailyPrices(ctx, []string{"VFINX"}, begin, end)
				Expect(err).To(BeNil())
				Expect(df.Len()).To(Equal(3))
				Expect(df.ColNames).To(Equal([]string{"VFINX"}))
				Expect(df.Vals[0]).To(Equal([]float64{100, 110, 99}))
			})

			It("anchors quote dates at the market close", func() {
				df, err := provider.DailyPrices(ctx, []string{"VFINX"}, begin, end)
				Expect(err).To(BeNil())
				Expect(df.Dates[0]).To(Equal(time.Date(2023, 6, 1, 16, 0, 0, 0, tz)))
			})

			It("serves repeated requests from the cache", func() {
				_, err := provider.DailyPrices(ctx, []string{"VFINX"}, begin, end)
				Expect(err).To(BeNil())
				_, err = provider.DailyPrices(ctx, []string{"VFINX"}, begin, end)
				Expect(err).To(BeNil())
				Expect(httpmock.GetTotalCallCount()).To(Equal(1))
			})
		})

		Context("with multiple tickers", func() {
			BeforeEach(func() {
				httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/VFINX/prices?startDate=2023-06-01&endDate=2023-06-05&resampleFreq=daily&token=TEST",
					httpmock.NewStringResponder(200, `[
						{"date":"2023-06-01T00:00:00.000Z","adjClose":100},
						{"date":"2023-06-02T00:00:00.000Z","adjClose":110}
					]`))
				httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/PRIDX/prices?startDate=2023-06-01&endDate=2023-06-05&resampleFreq=daily&token=TEST",
					httpmock.NewStringResponder(200, `[
						{"date":"2023-06-01T00:00:00.000Z","adjClose":50},
						{"date":"2023-06-02T00:00:00.000Z","adjClose":51}
					]`))
			})

			It("merges tickers into a single frame", func() {
				df, err := provider.DailyPrices(ctx, []string{"VFINX", "PRIDX"}, begin, end)
				Expect(err).To(BeNil())
				Expect(df.ColNames).To(Equal([]string{"VFINX", "PRIDX"}))
				Expect(df.Col("PRIDX")).To(Equal([]float64{50, 51}))
			})

			It("upper-cases tickers before the request", func() {
				df, err := provider.DailyPrices(ctx, []string{"vfinx"}, begin, end)
				Expect(err).To(BeNil())
				Expect(df.ColNames).To(Equal([]string{"VFINX"}))
			})
		})

		Context("when the provider misbehaves", func() {
			It("fails on an error status code", func() {
				httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/VFINX/prices?startDate=2023-06-01&endDate=2023-06-05&resampleFreq=daily&token=TEST",
					httpmock.NewStringResponder(404, "Not Found"))
				_, err := provider.DailyPrices(ctx, []string{"VFINX"}, begin, end)
				Expect(err).To(MatchError(data.ErrProviderRequest))
			})

			It("fails on an empty result", func() {
				httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/VFINX/prices?startDate=2023-06-01&endDate=2023-06-05&resampleFreq=daily&token=TEST",
					httpmock.NewStringResponder(200, `[]`))
				_, err := provider.DailyPrices(ctx, []string{"VFINX"}, begin, end)
				Expect(err).To(MatchError(data.ErrNoProviderData))
			})

			It("fails when no tickers are requested", func() {
				_, err := provider.DailyPrices(ctx, []string{}, begin, end)
				Expect(err).To(MatchError(data.ErrNoTickers))
			})
		})
	})

	Describe("LastTradingDay", func() {
		It("returns the date of the reference security's last quote", func() {
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/SPY/prices?endDate=2023-06-05&token=TEST",
				httpmock.NewStringResponder(200, `[
					{"date":"2023-06-02T00:00:00.000Z","adjClose":420}
				]`))
			lastDay, err := provider.LastTradingDay(ctx, end)
			Expect(err).To(BeNil())
			Expect(lastDay).To(Equal(time.Date(2023, 6, 2, 0, 0, 0, 0, tz)))
		})

		It("fails on an error status code", func() {
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/SPY/prices?endDate=2023-06-05&token=TEST",
				httpmock.NewStringResponder(404, `not found`))
			_, err := provider.LastTradingDay(ctx, end)
			Expect(err).To(MatchError(data.ErrProviderRequest))
		})
	})
})
