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
	"fmt"
	"os"

	"github.com/foliovault/fv-api/analytics"
	"github.com/foliovault/fv-api/common"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var mretWindow string

func init() {
	mretCmd.Flags().StringVarP(&mretWindow, "window", "w", analytics.WindowAll, "aggregation window, e.g. all, ytd, 3m, 6m, 1y, 3y, 5y, 10y")
	rootCmd.AddCommand(mretCmd)
}

var mretCmd = &cobra.Command{
	Use:   "mret [flags] returns.csv",
	Args:  cobra.ExactArgs(1),
	Short: "Aggregate a return series into monthly returns",
	Long: `Aggregate a return series stored as date,value rows in a CSV file
into a table of monthly compounded returns.`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		if windowsConfig := viper.GetString("windows.config"); windowsConfig != "" {
			doc, err := os.ReadFile(windowsConfig)
			if err != nil {
				log.Fatal().Err(err).Str("File", windowsConfig).Msg("could not read windows config")
			}
			if err := analytics.RegisterWindows(doc); err != nil {
				log.Fatal().Err(err).Str("File", windowsConfig).Msg("could not parse windows config")
			}
		}

		returns, err := loadSeriesCSV(args[0], "RETURNS")
		if err != nil {
			log.Fatal().Err(err).Str("File", args[0]).Msg("could not load returns")
		}

		table, err := analytics.MonthlyReturns(returns, mretWindow)
		if err != nil {
			log.Fatal().Err(err).Str("Window", mretWindow).Msg("could not aggregate returns")
		}

		fmt.Println(table.Table())

		if key, ret, ok := table.BestMonth(); ok {
			fmt.Printf("Best month:  %s %d %+.2f%%\n", key.Month, key.Year, ret*100)
		}
		if key, ret, ok := table.WorstMonth(); ok {
			fmt.Printf("Worst month: %s %d %+.2f%%\n", key.Month, key.Year, ret*100)
		}
	},
}
