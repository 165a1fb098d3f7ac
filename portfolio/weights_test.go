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

package portfolio_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliovault/fv-api/portfolio"
)

var _ = Describe("Weights", func() {
	var holdings []*portfolio.Holding

	BeforeEach(func() {
		holdings = []*portfolio.Holding{
			{Ticker: "VFINX", Properties: map[string]float64{"marketCap": 800}},
			{Ticker: "PRIDX", Properties: map[string]float64{"marketCap": 150}},
			{Ticker: "VUSTX", Properties: map[string]float64{"marketCap": 50}},
		}
	})

	Describe("EqualWeights", func() {
		Context("with three holdings and $10,000", func() {
			It("assigns each holding a third of the value", func() {
				alloc, err := portfolio.EqualWeights(holdings, 10_000)
				Expect(err).To(BeNil())
				Expect(alloc).To(HaveLen(3))
				Expect(alloc["VFINX"]).To(BeNumerically("~", 3333.30, 1e-9))
				Expect(alloc["PRIDX"]).To(BeNumerically("~", 3333.30, 1e-9))
				Expect(alloc["VUSTX"]).To(BeNumerically("~", 3333.30, 1e-9))
			})

			It("leaves the rounding residual uninvested", func() {
				alloc, err := portfolio.EqualWeights(holdings, 10_000)
				Expect(err).To(BeNil())
				Expect(alloc.Total()).To(BeNumerically("<=", 10_000))
			})
		})

		Context("with no holdings", func() {
			It("returns ErrNoHoldings", func() {
				_, err := portfolio.EqualWeights(nil, 10_000)
				Expect(err).To(MatchError(portfolio.ErrNoHoldings))
			})
		})

		Context("with an invalid value", func() {
			It("rejects zero", func() {
				_, err := portfolio.EqualWeights(holdings, 0)
				Expect(err).To(MatchError(portfolio.ErrInvalidValue))
			})

			It("rejects NaN", func() {
				_, err := portfolio.EqualWeights(holdings, math.NaN())
				Expect(err).To(MatchError(portfolio.ErrInvalidValue))
			})
		})
	})

	Describe("PropertyWeights", func() {
		Context("weighting by market cap", func() {
			It("allocates in proportion to the property", func() {
				alloc, err := portfolio.PropertyWeights(holdings, "marketCap", 10_000)
				Expect(err).To(BeNil())
				Expect(alloc["VFINX"]).To(BeNumerically("~", 8000, 1e-9))
				Expect(alloc["PRIDX"]).To(BeNumerically("~", 1500, 1e-9))
				Expect(alloc["VUSTX"]).To(BeNumerically("~", 500, 1e-9))
			})

			It("fully invests the portfolio value", func() {
				alloc, err := portfolio.PropertyWeights(holdings, "marketCap", 10_000)
				Expect(err).To(BeNil())
				Expect(alloc.Total()).To(BeNumerically("~", 10_000, 1e-9))
			})
		})

		Context("when a holding lacks the property", func() {
			It("assigns it zero weight", func() {
				holdings[2].Properties = nil
				alloc, err := portfolio.PropertyWeights(holdings, "marketCap", 10_000)
				Expect(err).To(BeNil())
				Expect(alloc["VUSTX"]).To(Equal(0.0))
				Expect(alloc["VFINX"]).To(BeNumerically("~", 10_000.0*800/950, 1e-9))
			})
		})

		Context("when no holding has the property", func() {
			It("returns ErrPropertyMissing", func() {
				_, err := portfolio.PropertyWeights(holdings, "dividendYield", 10_000)
				Expect(err).To(MatchError(portfolio.ErrPropertyMissing))
			})
		})
	})

	Describe("Allocation", func() {
		It("returns tickers in sorted order", func() {
			alloc, err := portfolio.EqualWeights(holdings, 300)
			Expect(err).To(BeNil())
			Expect(alloc.Tickers()).To(Equal([]string{"PRIDX", "VFINX", "VUSTX"}))
		})
	})
})
