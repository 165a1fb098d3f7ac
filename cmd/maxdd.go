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

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	maxddIsReturns bool
	maxddChart     bool
	maxddTopN      int
)

func init() {
	maxddCmd.Flags().BoolVarP(&maxddIsReturns, "returns", "r", false, "input series contains period returns instead of values")
	maxddCmd.Flags().BoolVar(&maxddChart, "chart", false, "plot the drawdown curve")
	maxddCmd.Flags().IntVarP(&maxddTopN, "top", "n", 5, "number of drawdown episodes to show")
	rootCmd.AddCommand(maxddCmd)
}

var maxddCmd = &cobra.Command{
	Use:   "maxdd [flags] series.csv",
	Args:  cobra.ExactArgs(1),
	Short: "Compute the drawdown profile of a series",
	Long: `Compute the drawdown profile of a value or return series stored as
date,value rows in a CSV file.`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		series, err := loadSeriesCSV(args[0], "VALUES")
		if err != nil {
			log.Fatal().Err(err).Str("File", args[0]).Msg("could not load series")
		}

		holdings, drawdown, err := analytics.MaxDD(series, maxddIsReturns)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute drawdown")
		}

		episodes, err := analytics.TopDrawDowns(holdings, maxddTopN)
		if err != nil {
			log.Fatal().Err(err).Msg("could not extract drawdown episodes")
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Begin", "Trough Loss", "End", "Recovered By"})
		for _, episode := range episodes {
			recovery := "--"
			if !episode.Recovery.IsZero() {
				recovery = episode.Recovery.Format("2006-01-02")
			}
			table.Append([]string{
				episode.Begin.Format("2006-01-02"),
				fmt.Sprintf("%.2f%%", episode.LossPercent*100),
				episode.End.Format("2006-01-02"),
				recovery,
			})
		}
		table.Render()

		if ulcer, err := analytics.UlcerIndex(holdings, holdings.Len()); err == nil {
			fmt.Printf("\nUlcer index: %.4f\n", ulcer)
		}

		if maxddChart {
			fmt.Println()
			fmt.Println(asciigraph.Plot(drawdown.Vals[0],
				asciigraph.Height(10),
				asciigraph.Caption("drawdown")))
		}
	},
}
