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
	"time"

	"github.com/foliovault/fv-api/database"
	"github.com/foliovault/fv-api/dataframe"
	"github.com/foliovault/fv-api/observability/opentelemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgsql"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	// SeriesColumn is the column name assigned to a portfolio's stored
	// return series.
	SeriesColumn = "RETURNS"

	portfolioTable = "portfolio_v1"
	returnsTable   = "portfolio_return_v1"
)

// Portfolio is the metadata row for a stored return series.
type Portfolio struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"userID"`
	Name   string    `json:"name"`
}

// GetPortfolio loads the metadata for a single portfolio. Row level
// security hides other users' portfolios so a missing row and a forbidden
// row look the same to the caller.
func GetPortfolio(ctx context.Context, portfolioID uuid.UUID, userID string) (*Portfolio, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "data.GetPortfolio")
	defer span.End()

	subLog := log.With().Str("PortfolioID", portfolioID.String()).Str("UserID", userID).Logger()

	trx, err := database.TrxForUser(ctx, userID)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not create transaction")
		return nil, err
	}

	stmt := &pgsql.SelectStatement{}
	stmt.Select("id")
	stmt.Select("user_id")
	stmt.Select("name")
	stmt.From(pgx.Identifier{portfolioTable}.Sanitize())
	stmt.Where("id = ?", portfolioID.String())
	sql, args := pgsql.Build(stmt)

	p := &Portfolio{}
	err = trx.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.UserID, &p.Name)
	if err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		if err == pgx.ErrNoRows {
			return nil, ErrPortfolioNotFound
		}
		span.SetStatus(codes.Error, "portfolio query failed")
		subLog.Error().Stack().Err(err).Str("Query", sql).Msg("portfolio query failed")
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	return p, nil
}

// GetReturns loads the stored return series of a portfolio ordered by date.
func GetReturns(ctx context.Context, portfolioID uuid.UUID, userID string) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "data.GetReturns")
	defer span.End()

	subLog := log.With().Str("PortfolioID", portfolioID.String()).Str("UserID", userID).Logger()

	trx, err := database.TrxForUser(ctx, userID)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not create transaction")
		return nil, err
	}

	stmt := &pgsql.SelectStatement{}
	stmt.Select("event_date")
	stmt.Select("ret")
	stmt.From(pgx.Identifier{returnsTable}.Sanitize())
	stmt.Where("portfolio_id = ?", portfolioID.String())
	stmt.Order("event_date ASC")
	sql, args := pgsql.Build(stmt)

	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		span.SetStatus(codes.Error, "return series query failed")
		subLog.Error().Stack().Err(err).Str("Query", sql).Msg("return series query failed")
		return nil, err
	}

	dates := make([]time.Time, 0, 252)
	vals := make([]float64, 0, 252)
	for rows.Next() {
		var dt time.Time
		var ret float64
		if err := rows.Scan(&dt, &ret); err != nil {
			subLog.Warn().Stack().Err(err).Msg("return series scan failed")
			continue
		}
		dates = append(dates, dt)
		vals = append(vals, ret)
	}

	if err := rows.Err(); err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		subLog.Error().Stack().Err(err).Msg("return series read failed")
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	if len(dates) == 0 {
		return nil, ErrPortfolioNotFound
	}

	return dataframe.New(SeriesColumn, dates, vals), nil
}

// SaveReturns replaces the stored return series of a portfolio. The old
// series is deleted and the new one bulk loaded in a single transaction.
func SaveReturns(ctx context.Context, portfolioID uuid.UUID, userID string, returns *dataframe.DataFrame) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "data.SaveReturns")
	defer span.End()

	subLog := log.With().Str("PortfolioID", portfolioID.String()).Str("UserID", userID).Logger()

	trx, err := database.TrxForUser(ctx, userID)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not create transaction")
		return err
	}

	sql := "DELETE FROM portfolio_return_v1 WHERE portfolio_id = $1"
	if _, err := trx.Exec(ctx, sql, portfolioID.String()); err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		span.SetStatus(codes.Error, "delete of return series failed")
		subLog.Error().Stack().Err(err).Str("Query", sql).Msg("delete of return series failed")
		return err
	}

	rows := make([][]interface{}, 0, returns.Len())
	col := returns.Vals[0]
	for idx, dt := range returns.Dates {
		rows = append(rows, []interface{}{portfolioID, dt, col[idx]})
	}

	_, err = trx.CopyFrom(ctx, pgx.Identifier{returnsTable},
		[]string{"portfolio_id", "event_date", "ret"}, pgx.CopyFromRows(rows))
	if err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		span.SetStatus(codes.Error, "copy of return series failed")
		subLog.Error().Stack().Err(err).Msg("copy of return series failed")
		return err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
		return err
	}

	return nil
}
