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

package data

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/foliovault/fv-api/common"
	"github.com/foliovault/fv-api/dataframe"
	"github.com/foliovault/fv-api/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var providerURL = "https://api.tiingo.com"

const chunkSize = 10

type priceJSON struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	AdjClose    float64 `json:"adjClose"`
	DivCash     float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

type quoteResult struct {
	Ticker string
	Data   *dataframe.DataFrame
	Err    error
}

// Provider fetches end of day adjusted close prices from tiingo. Responses
// are cached by request URL for the life of the provider.
type Provider struct {
	apikey string
	cache  map[string]*dataframe.DataFrame
	lock   sync.RWMutex
}

// NewProvider creates a new tiingo price provider
func NewProvider(apikey string) *Provider {
	return &Provider{
		apikey: apikey,
		cache:  make(map[string]*dataframe.DataFrame),
	}
}

// DailyPrices fetches the adjusted close price series for each ticker over
// [begin, end] and merges them into a single frame with one column per
// ticker. Tickers are fetched concurrently in chunks. All tickers must
// trade on the same dates; a partial failure fails the whole request.
func (p *Provider) DailyPrices(ctx context.Context, tickers []string, begin time.Time, end time.Time) (*dataframe.DataFrame, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "provider.DailyPrices")
	defer span.End()

	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	subLog := log.With().Strs("Tickers", tickers).Time("Begin", begin).Time("End", end).Logger()

	frames := make(map[string]*dataframe.DataFrame, len(tickers))
	ch := make(chan quoteResult)
	var errs []error

	for _, chunk := range partition(tickers, chunkSize) {
		for ii := range chunk {
			go func(ticker string) {
				df, err := p.dailyPrices(ticker, begin, end)
				ch <- quoteResult{Ticker: ticker, Data: df, Err: err}
			}(strings.ToUpper(chunk[ii]))
		}

		for range chunk {
			v := <-ch
			if v.Err != nil {
				subLog.Warn().Err(v.Err).Str("Ticker", v.Ticker).Msg("cannot download ticker data")
				errs = append(errs, v.Err)
				continue
			}
			frames[v.Ticker] = v.Data
		}
	}

	if len(errs) != 0 {
		span.SetStatus(codes.Error, "provider request failed")
		return nil, errs[0]
	}

	merged := frames[strings.ToUpper(tickers[0])]
	for _, ticker := range tickers[1:] {
		ticker = strings.ToUpper(ticker)
		df := frames[ticker]
		if df.Len() != merged.Len() {
			return nil, dataframe.ErrDateIndexNotAligned
		}
		for idx := range df.Dates {
			if !df.Dates[idx].Equal(merged.Dates[idx]) {
				return nil, dataframe.ErrDateIndexNotAligned
			}
		}
		merged = merged.Insert(ticker, df.Vals[0])
	}

	return merged, nil
}

func (p *Provider) dailyPrices(ticker string, begin time.Time, end time.Time) (*dataframe.DataFrame, error) {
	subLog := log.With().Str("Ticker", ticker).Time("Begin", begin).Time("End", end).Logger()

	var url string
	nullTime := time.Time{}
	if begin.Equal(nullTime) || end.Equal(nullTime) {
		url = fmt.Sprintf("%s/tiingo/daily/%s/prices?resampleFreq=daily&token=%s", providerURL, ticker, p.apikey)
	} else {
		url = fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s&resampleFreq=daily&token=%s", providerURL, ticker, begin.Format("2006-01-02"), end.Format("2006-01-02"), p.apikey)
	}

	p.lock.RLock()
	res, ok := p.cache[url]
	p.lock.RUnlock()

	subLog.Debug().Bool("Cached", ok).Msg("load eod prices")

	if ok {
		return res, nil
	}

	resp, err := http.Get(url)
	if err != nil {
		subLog.Warn().Err(err).Msg("failed to load eod prices")
		return nil, err
	}

	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		subLog.Warn().Err(err).Int("HTTPResponseStatusCode", resp.StatusCode).Msg("read eod price body failed")
		return nil, err
	}

	if resp.StatusCode >= 400 {
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Bytes("Body", body).Msg("provider request failed")
		return nil, fmt.Errorf("%w: status code %d", ErrProviderRequest, resp.StatusCode)
	}

	prices := []priceJSON{}
	if err := json.Unmarshal(body, &prices); err != nil {
		subLog.Error().Err(err).Bytes("Body", body).Msg("could not unmarshal json")
		return nil, err
	}

	if len(prices) == 0 {
		return nil, ErrNoProviderData
	}

	tz := common.GetTimezone()
	dates := make([]time.Time, 0, len(prices))
	vals := make([]float64, 0, len(prices))
	for _, quote := range prices {
		dtParts := strings.Split(quote.Date, "T")
		dt, err := time.ParseInLocation("2006-01-02", dtParts[0], tz)
		if err != nil {
			subLog.Error().Err(err).Str("DateStr", quote.Date).Msg("cannot parse date string")
			return nil, err
		}
		// market close is the reference time for daily quotes
		dates = append(dates, dt.Add(time.Hour*16))
		vals = append(vals, quote.AdjClose)
	}

	res = dataframe.New(ticker, dates, vals)

	p.lock.Lock()
	p.cache[url] = res
	p.lock.Unlock()

	return res, nil
}

// LastTradingDay returns the most recent trading day on or before forDate,
// using SPY as the reference security.
func (p *Provider) LastTradingDay(ctx context.Context, forDate time.Time) (time.Time, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "provider.LastTradingDay")
	defer span.End()

	subLog := log.With().Time("ForDate", forDate).Logger()

	ticker := "SPY"
	url := fmt.Sprintf("%s/tiingo/daily/%s/prices?endDate=%s&token=%s", providerURL, ticker, forDate.Format("2006-01-02"), p.apikey)

	span.SetAttributes(attribute.KeyValue{
		Key:   "Ticker",
		Value: attribute.StringValue(ticker),
	})

	resp, err := http.Get(url)
	if err != nil {
		span.RecordError(err)
		msg := "provider http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return time.Time{}, err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := "provider returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Msg(msg)
		return time.Time{}, fmt.Errorf("%w: status code %d", ErrProviderRequest, resp.StatusCode)
	}

	prices := []priceJSON{}
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		span.RecordError(err)
		msg := "could not decode json"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return time.Time{}, err
	}

	if len(prices) == 0 {
		span.SetStatus(codes.Error, "no data returned")
		return time.Time{}, ErrNoProviderData
	}

	last := prices[len(prices)-1]
	dtParts := strings.Split(last.Date, "T")
	lastDay, err := time.ParseInLocation("2006-01-02", dtParts[0], common.GetTimezone())
	if err != nil {
		span.RecordError(err)
		subLog.Error().Err(err).Str("DateStr", last.Date).Msg("cannot parse date string")
		return time.Time{}, err
	}

	return lastDay, nil
}

func partition(items []string, size int) [][]string {
	chunks := make([][]string, 0, len(items)/size+1)
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[0:size:size])
	}
	return append(chunks, items)
}
