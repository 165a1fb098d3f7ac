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
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/foliovault/fv-api/portfolio"
)

type weightsRequest struct {
	Holdings []*portfolio.Holding `json:"holdings"`
	Value    float64              `json:"value"`
	Property string               `json:"property,omitempty"`
}

type weightsResponse struct {
	Allocation portfolio.Allocation `json:"allocation"`
	Total      float64              `json:"total"`
}

// Weights allocates a portfolio value across holdings. Without a property
// the split is equal weight; with one, proportional to that property.
func Weights(c *fiber.Ctx) error {
	var req weightsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Stack().Err(err).Msg("could not unmarshal weights request")
		return fiber.ErrBadRequest
	}

	var alloc portfolio.Allocation
	var err error
	if req.Property == "" {
		alloc, err = portfolio.EqualWeights(req.Holdings, req.Value)
	} else {
		alloc, err = portfolio.PropertyWeights(req.Holdings, req.Property, req.Value)
	}
	if err != nil {
		log.Warn().Err(err).Str("Property", req.Property).Msg("weights rejected input")
		return fiber.ErrBadRequest
	}

	return c.JSON(weightsResponse{
		Allocation: alloc,
		Total:      alloc.Total(),
	})
}
