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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"runtime/trace"

	"github.com/foliovault/fv-api/analytics"
	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/database"
	"github.com/foliovault/fv-api/jwks"
	"github.com/foliovault/fv-api/middleware"
	"github.com/foliovault/fv-api/observability/opentelemetry"
	"github.com/foliovault/fv-api/router"

	"github.com/go-co-op/gocron"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	viper.BindEnv("server.cors_origins", "FV_CORS_ORIGINS")
	serveCmd.Flags().String("cors-origins", "http://localhost:8080", "Comma separated list of allowed CORS origins")
	viper.BindPFlag("server.cors_origins", serveCmd.Flags().Lookup("cors-origins"))

	viper.BindEnv("cache.flush_schedule", "FV_CACHE_FLUSH_SCHEDULE")
	serveCmd.Flags().String("cache-flush-schedule", "0 4 * * *", "Cron schedule for flushing the result cache")
	viper.BindPFlag("cache.flush_schedule", serveCmd.Flags().Lookup("cache-flush-schedule"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fv-api server",
	Long:  `Run HTTP server that implements the Folio Vault API`,
	Run: func(cmd *cobra.Command, args []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output file")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start CPU profile")
			}
			defer pprof.StopCPUProfile()
		}

		if Trace {
			f, err := os.Create("trace.out")
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create trace output file")
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Fatal().Err(err).Msg("failed to close trace file")
				}
			}()

			if err := trace.Start(f); err != nil {
				log.Fatal().Err(err).Msg("failed to start trace")
			}
			defer trace.Stop()
		}

		common.SetupLogging()
		common.SetupCache()
		log.Info().Msg("initialized logging")

		// register custom aggregation windows
		if windowsConfig := viper.GetString("windows.config"); windowsConfig != "" {
			doc, err := os.ReadFile(windowsConfig)
			if err != nil {
				log.Fatal().Err(err).Str("File", windowsConfig).Msg("could not read windows config")
			}
			if err := analytics.RegisterWindows(doc); err != nil {
				log.Fatal().Err(err).Str("File", windowsConfig).Msg("could not parse windows config")
			}
		}

		// setup open telemetry
		otelShutdown, err := opentelemetry.Setup()
		if err != nil {
			log.Error().Err(err).Msg("could not setup opentelemetry")
		}
		defer func() {
			if otelShutdown != nil {
				if err := otelShutdown(context.Background()); err != nil {
					log.Error().Err(err).Msg("could not shutdown opentelemetry")
				}
			}
		}()

		// setup database
		if err := database.Connect(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		app := fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})

		// shutdown cleanly on interrupt
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)
		go func() {
			sig := <-quit
			log.Info().Str("Signal", sig.String()).Msg("received signal; shutting down")
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("could not shutdown server")
			}
		}()

		app.Use(cors.New(cors.Config{
			AllowOrigins: viper.GetString("server.cors_origins"),
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		}))

		app.Use(middleware.NewLogger())

		jwksAutoRefresh, jwksURL := jwks.SetupJWKS()
		router.SetupRoutes(app, jwksAutoRefresh, jwksURL)

		// schedule periodic maintenance
		flushSchedule := viper.GetString("cache.flush_schedule")
		if _, err := cron.ParseStandard(flushSchedule); err != nil {
			log.Fatal().Err(err).Str("Schedule", flushSchedule).Msg("invalid cache flush schedule")
		}

		scheduler := gocron.NewScheduler(common.GetTimezone())
		scheduler.Cron(flushSchedule).Do(common.PurgeCache)
		scheduler.Every(1).Hours().Do(database.LogOpenTransactions)
		scheduler.StartAsync()

		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server exited with error")
		}
	},
}
