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
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// WindowAll applies no trailing restriction
const WindowAll = "all"

// customWindows maps user-registered window tokens to a trailing length in
// months; built-in tokens always take precedence
var customWindows = map[string]int{}

// WindowDef defines a custom window token as a trailing number of months
type WindowDef struct {
	Token  string `toml:"token"`
	Months int    `toml:"months"`
}

type windowDoc struct {
	Windows []WindowDef `toml:"windows"`
}

// RegisterWindows parses a TOML document of custom window definitions and adds
// them to the recognized token set, e.g.:
//
//	[[windows]]
//	token = "18m"
//	months = 18
func RegisterWindows(doc []byte) error {
	var parsed windowDoc
	if err := toml.Unmarshal(doc, &parsed); err != nil {
		log.Error().Stack().Err(err).Msg("failed to parse window definitions")
		return err
	}

	for _, def := range parsed.Windows {
		token := strings.ToLower(def.Token)
		if token == "" || def.Months < 1 {
			log.Warn().Str("Token", def.Token).Int("Months", def.Months).Msg("skipping invalid window definition")
			continue
		}
		customWindows[token] = def.Months
		log.Debug().Str("Token", token).Int("Months", def.Months).Msg("registered custom window")
	}

	return nil
}

// windowStart maps a window token to the earliest date included by the window,
// anchored at the series' last date. The anchor convention is trailing-exact:
// "1y" measured from 2023-06-15 includes [2022-06-15, 2023-06-15]. The token
// "ytd" starts at January 1 of the anchor's year and "all" returns the zero
// time so no restriction applies.
func windowStart(window string, last time.Time) (time.Time, error) {
	switch strings.ToLower(window) {
	case WindowAll, "":
		return time.Time{}, nil
	case "ytd":
		return time.Date(last.Year(), time.January, 1, 0, 0, 0, 0, last.Location()), nil
	case "3m":
		return last.AddDate(0, -3, 0), nil
	case "6m":
		return last.AddDate(0, -6, 0), nil
	case "1y":
		return last.AddDate(-1, 0, 0), nil
	case "3y":
		return last.AddDate(-3, 0, 0), nil
	case "5y":
		return last.AddDate(-5, 0, 0), nil
	case "10y":
		return last.AddDate(-10, 0, 0), nil
	}

	if months, ok := customWindows[strings.ToLower(window)]; ok {
		return last.AddDate(0, -months, 0), nil
	}

	return time.Time{}, ErrInvalidWindow
}
