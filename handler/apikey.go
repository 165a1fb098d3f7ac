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
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/foliovault/fv-api/middleware"
)

// ApiKey issues a long-lived api key for the authenticated user
func ApiKey(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return fiber.ErrUnauthorized
	}

	apikey, err := middleware.EncodeApiKey(userID)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not issue apikey")
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{"apikey": apikey})
}
