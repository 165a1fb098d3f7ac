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
	"github.com/rs/zerolog"
)

func (o *DrawDown) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", o.Begin).Time("End", o.End).Time("RecoveryDate", o.Recovery).Float64("LossPercent", o.LossPercent)
}

func (table *MonthlyReturnTable) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Window", table.Window).Int("NumMonths", len(table.Returns))
	if best, ret, ok := table.BestMonth(); ok {
		e.Int("BestMonth.Year", best.Year).Int("BestMonth.Month", int(best.Month)).Float64("BestMonth.Return", ret)
	}
	if worst, ret, ok := table.WorstMonth(); ok {
		e.Int("WorstMonth.Year", worst.Year).Int("WorstMonth.Month", int(worst.Month)).Float64("WorstMonth.Return", ret)
	}
}
