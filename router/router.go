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

package router

import (
	"github.com/foliovault/fv-api/handler"
	"github.com/foliovault/fv-api/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/jwk"
)

// SetupRoutes registers all API routes on the fiber app
func SetupRoutes(app *fiber.App, jwks *jwk.AutoRefresh, jwksURL string) {
	auth := middleware.FVAuth(jwks, jwksURL)

	api := app.Group("/v1")
	api.Get("/", handler.Ping)
	api.Get("/apikey", auth, handler.ApiKey)

	// Analytics over series provided in the request body
	analytics := api.Group("/analytics")
	analytics.Post("/maxdd", handler.MaxDrawDown)
	analytics.Post("/mret", handler.MonthlyReturns)

	// Stored portfolios
	portfolio := api.Group("/portfolio", auth)
	portfolio.Get("/:id", handler.GetPortfolio)
	portfolio.Get("/:id/maxdd", handler.PortfolioMaxDrawDown)
	portfolio.Get("/:id/mret", handler.PortfolioMonthlyReturns)
	portfolio.Post("/weights", handler.Weights)
}
