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
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/foliovault/fv-api/analytics"
	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/data"
)

func portfolioUser(c *fiber.Ctx) (uuid.UUID, string, error) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return uuid.UUID{}, "", fiber.ErrUnauthorized
	}

	portfolioID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		log.Warn().Err(err).Str("PortfolioID", c.Params("id")).Msg("invalid portfolio id")
		return uuid.UUID{}, "", fiber.ErrBadRequest
	}

	return portfolioID, userID, nil
}

// GetPortfolio returns the metadata of a stored portfolio.
func GetPortfolio(c *fiber.Ctx) error {
	portfolioID, userID, err := portfolioUser(c)
	if err != nil {
		return err
	}

	p, err := data.GetPortfolio(c.Context(), portfolioID, userID)
	if err != nil {
		if errors.Is(err, data.ErrPortfolioNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(p)
}

// PortfolioMaxDrawDown computes the drawdown profile of a portfolio's
// stored return series. Results are cached by portfolio.
func PortfolioMaxDrawDown(c *fiber.Ctx) error {
	portfolioID, userID, err := portfolioUser(c)
	if err != nil {
		return err
	}

	cacheKey := common.CacheKey([]byte("maxdd"), []byte(userID), portfolioID[:])
	if payload, err := common.CacheGet(cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	returns, err := data.GetReturns(c.Context(), portfolioID, userID)
	if err != nil {
		if errors.Is(err, data.ErrPortfolioNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	holdings, drawdown, err := analytics.MaxDD(returns, true)
	if err != nil {
		log.Error().Stack().Err(err).Str("PortfolioID", portfolioID.String()).Msg("maxdd computation failed")
		return fiber.ErrInternalServerError
	}

	episodes, err := analytics.DrawDowns(holdings)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	maxEpisode, err := analytics.MaxDrawDownEpisode(holdings)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	resp := maxDDResponse{
		Holdings:    seriesFromDataFrame(holdings),
		DrawDown:    seriesFromDataFrame(drawdown),
		MaxDrawDown: maxEpisode,
		Episodes:    episodes,
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if err := common.CacheSet(cacheKey, payload); err != nil {
		log.Warn().Err(err).Msg("could not cache maxdd result")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// PortfolioMonthlyReturns aggregates a portfolio's stored return series
// into a monthly return table. The window query parameter restricts the
// table; it defaults to the full series.
func PortfolioMonthlyReturns(c *fiber.Ctx) error {
	portfolioID, userID, err := portfolioUser(c)
	if err != nil {
		return err
	}

	window := c.Query("window", analytics.WindowAll)

	cacheKey := common.CacheKey([]byte("mret"), []byte(userID), portfolioID[:], []byte(window))
	if payload, err := common.CacheGet(cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	returns, err := data.GetReturns(c.Context(), portfolioID, userID)
	if err != nil {
		if errors.Is(err, data.ErrPortfolioNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	table, err := analytics.MonthlyReturns(returns, window)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidWindow) {
			log.Warn().Err(err).Str("Window", window).Msg("invalid window token")
			return fiber.ErrBadRequest
		}
		log.Error().Stack().Err(err).Str("PortfolioID", portfolioID.String()).Msg("mret computation failed")
		return fiber.ErrInternalServerError
	}

	payload, err := json.Marshal(monthlyReturnsToJSON(table))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if err := common.CacheSet(cacheKey, payload); err != nil {
		log.Warn().Err(err).Msg("could not cache mret result")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}
