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

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/foliovault/fv-api/analytics"
)

type mretRequest struct {
	Returns seriesJSON `json:"returns"`
	Window  string     `json:"window"`
}

type monthlyReturnJSON struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Return float64 `json:"return"`
}

type mretResponse struct {
	Window     string              `json:"window"`
	Months     []monthlyReturnJSON `json:"months"`
	Annual     map[int]float64     `json:"annual"`
	BestMonth  *monthlyReturnJSON  `json:"bestMonth,omitempty"`
	WorstMonth *monthlyReturnJSON  `json:"worstMonth,omitempty"`
}

func monthlyReturnsToJSON(table *analytics.MonthlyReturnTable) *mretResponse {
	resp := &mretResponse{
		Window: table.Window,
		Months: make([]monthlyReturnJSON, 0, len(table.Returns)),
		Annual: table.Annual(),
	}
	for _, key := range table.Keys() {
		resp.Months = append(resp.Months, monthlyReturnJSON{
			Year:   key.Year,
			Month:  int(key.Month),
			Return: table.Returns[key],
		})
	}
	if key, ret, ok := table.BestMonth(); ok {
		resp.BestMonth = &monthlyReturnJSON{Year: key.Year, Month: int(key.Month), Return: ret}
	}
	if key, ret, ok := table.WorstMonth(); ok {
		resp.WorstMonth = &monthlyReturnJSON{Year: key.Year, Month: int(key.Month), Return: ret}
	}
	return resp
}

// MonthlyReturns aggregates a return series posted in the request body into
// a monthly return table restricted to the requested window.
func MonthlyReturns(c *fiber.Ctx) error {
	var req mretRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Stack().Err(err).Msg("could not unmarshal mret request")
		return fiber.ErrBadRequest
	}

	if req.Window == "" {
		req.Window = analytics.WindowAll
	}

	returns, err := req.Returns.toDataFrame("RETURNS")
	if err != nil {
		log.Warn().Stack().Err(err).Msg("invalid series in mret request")
		return fiber.ErrBadRequest
	}

	table, err := analytics.MonthlyReturns(returns, req.Window)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidInput) {
			log.Warn().Stack().Err(err).Str("Window", req.Window).Msg("mret rejected input")
			return fiber.ErrBadRequest
		}
		log.Error().Stack().Err(err).Msg("mret computation failed")
		return fiber.ErrInternalServerError
	}

	return c.JSON(monthlyReturnsToJSON(table))
}
