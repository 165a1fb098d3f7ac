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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
	"github.com/foliovault/fv-api/portfolio"
)

var _ = Describe("Returns", func() {
	var prices *dataframe.DataFrame

	BeforeEach(func() {
		tz := common.GetTimezone()
		dates := []time.Time{
			time.Date(2023, 6, 1, 0, 0, 0, 0, tz),
			time.Date(2023, 6, 2, 0, 0, 0, 0, tz),
			time.Date(2023, 6, 5, 0, 0, 0, 0, tz),
		}
		prices = dataframe.New("CLOSE", dates, []float64{100, 110, 99})
	})

	Describe("PriceReturns", func() {
		It("computes simple returns and drops the first row", func() {
			rets, err := portfolio.PriceReturns(prices)
			Expect(err).To(BeNil())
			Expect(rets.Len()).To(Equal(2))
			Expect(rets.Vals[0][0]).To(BeNumerically("~", 0.10, 1e-12))
			Expect(rets.Vals[0][1]).To(BeNumerically("~", -0.10, 1e-12))
		})

		It("rejects series with fewer than two observations", func() {
			short := dataframe.New("CLOSE", prices.Dates[:1], []float64{100})
			_, err := portfolio.PriceReturns(short)
			Expect(err).To(MatchError(portfolio.ErrTooFewObservations))
		})

		It("rejects a nil series", func() {
			_, err := portfolio.PriceReturns(nil)
			Expect(err).To(MatchError(portfolio.ErrTooFewObservations))
		})
	})

	Describe("LogReturns", func() {
		It("computes continuously compounded returns", func() {
			rets, err := portfolio.LogReturns(prices)
			Expect(err).To(BeNil())
			Expect(rets.Vals[0][0]).To(BeNumerically("~", math.Log(1.10), 1e-12))
			Expect(rets.Vals[0][1]).To(BeNumerically("~", math.Log(0.90), 1e-12))
		})
	})
})
