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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliovault/fv-api/analytics"
	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
)

var _ = Describe("When registering custom windows", func() {
	var (
		tz   *time.Location
		rets *dataframe.DataFrame
	)

	BeforeEach(func() {
		tz = common.GetTimezone()

		dates := []time.Time{}
		vals := []float64{}
		for month := 0; month < 24; month++ {
			dates = append(dates, time.Date(2021, time.January, 15, 0, 0, 0, 0, tz).AddDate(0, month, 0))
			vals = append(vals, 0.01)
		}
		rets = dataframe.New("PORTFOLIO", dates, vals)
	})

	It("recognizes a token defined in TOML", func() {
		doc := []byte("[[windows]]\ntoken = \"18m\"\nmonths = 18\n")
		Expect(analytics.RegisterWindows(doc)).To(BeNil())

		table, err := analytics.MonthlyReturns(rets, "18m")
		Expect(err).To(BeNil())
		// 18 trailing months anchored at 2022-12-15, cutoff 2021-06-15 inclusive
		Expect(len(table.Returns)).To(Equal(19))
	})

	It("skips definitions with invalid month counts", func() {
		doc := []byte("[[windows]]\ntoken = \"bogus\"\nmonths = 0\n")
		Expect(analytics.RegisterWindows(doc)).To(BeNil())

		_, err := analytics.MonthlyReturns(rets, "bogus")
		Expect(errors.Is(err, analytics.ErrInvalidWindow)).To(BeTrue())
	})

	It("errors on malformed TOML", func() {
		Expect(analytics.RegisterWindows([]byte("[[windows]\n"))).NotTo(BeNil())
	})

	It("does not shadow built-in tokens", func() {
		doc := []byte("[[windows]]\ntoken = \"1y\"\nmonths = 99\n")
		Expect(analytics.RegisterWindows(doc)).To(BeNil())

		table, err := analytics.MonthlyReturns(rets, "1y")
		Expect(err).To(BeNil())
		// trailing-exact one year anchored at 2022-12-15 covers 13 months inclusive
		Expect(len(table.Returns)).To(Equal(13))
	})
})
