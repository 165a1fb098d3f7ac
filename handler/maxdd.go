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

type maxDDRequest struct {
	Series    seriesJSON `json:"series"`
	IsReturns bool       `json:"isReturns"`
}

type maxDDResponse struct {
	Holdings    *seriesJSON           `json:"holdings"`
	DrawDown    *seriesJSON           `json:"drawdown"`
	MaxDrawDown *analytics.DrawDown   `json:"maxDrawDown,omitempty"`
	Episodes    []*analytics.DrawDown `json:"episodes"`
	UlcerIndex  float64               `json:"ulcerIndex"`
}

// MaxDrawDown computes the drawdown profile of a value or return series
// posted in the request body.
func MaxDrawDown(c *fiber.Ctx) error {
	var req maxDDRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Stack().Err(err).Msg("could not unmarshal maxdd request")
		return fiber.ErrBadRequest
	}

	series, err := req.Series.toDataFrame("VALUES")
	if err != nil {
		log.Warn().Stack().Err(err).Msg("invalid series in maxdd request")
		return fiber.ErrBadRequest
	}

	holdings, drawdown, err := analytics.MaxDD(series, req.IsReturns)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidInput) {
			log.Warn().Stack().Err(err).Msg("maxdd rejected input series")
			return fiber.ErrBadRequest
		}
		log.Error().Stack().Err(err).Msg("maxdd computation failed")
		return fiber.ErrInternalServerError
	}

	episodes, err := analytics.DrawDowns(holdings)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not extract drawdown episodes")
		return fiber.ErrInternalServerError
	}

	maxEpisode, err := analytics.MaxDrawDownEpisode(holdings)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not find max drawdown episode")
		return fiber.ErrInternalServerError
	}

	ulcer, err := analytics.UlcerIndex(holdings, holdings.Len())
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not compute ulcer index")
		return fiber.ErrInternalServerError
	}

	return c.JSON(maxDDResponse{
		Holdings:    seriesFromDataFrame(holdings),
		DrawDown:    seriesFromDataFrame(drawdown),
		MaxDrawDown: maxEpisode,
		Episodes:    episodes,
		UlcerIndex:  ulcer,
	})
}
