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

package database

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
}

var ErrEmptyUserID = errors.New("userID cannot be an empty string")

var (
	pool             PgxIface
	openTransactions map[string]string
)

// createUser provisions a database role for a user seen for the first time.
// Each user gets their own nologin role so row level security policies can
// scope queries to the active user.
func createUser(ctx context.Context, userID string) error {
	if userID == "" {
		log.Error().Stack().Msg("userID cannot be an empty string")
		return ErrEmptyUserID
	}

	subLog := log.With().Str("UserID", userID).Logger()
	subLog.Info().Msg("creating new role")

	trx, err := pool.Begin(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not create new transaction")
		return err
	}

	if _, err = trx.Exec(ctx, "SET ROLE fvapi"); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not switch to fvapi role")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	// NOTE: postgresql only sanitizes parameters on select, insert, update,
	// and delete queries so the identifier must be sanitized here
	ident := pgx.Identifier{userID}
	sql := fmt.Sprintf("CREATE ROLE %s WITH nologin IN ROLE fvuser;", ident.Sanitize())
	if _, err = trx.Exec(ctx, sql); err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Str("Query", sql).Msg("could not rollback transaction")
		}
		subLog.Error().Stack().Err(err).Str("Query", sql).Msg("failed to create role")
		return err
	}

	sql = fmt.Sprintf("GRANT %s TO fvapi;", ident.Sanitize())
	if _, err = trx.Exec(ctx, sql); err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Str("Query", sql).Msg("could not rollback transaction")
		}
		subLog.Error().Stack().Err(err).Str("Query", sql).Msg("failed to grant privileges to role")
		return err
	}

	if err = trx.Commit(ctx); err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		subLog.Error().Stack().Err(err).Msg("failed to commit changes")
		return err
	}

	return nil
}

// SetPool replaces the connection pool. Tests use this to substitute a mock.
func SetPool(myPool PgxIface) {
	openTransactions = make(map[string]string)
	pool = myPool
}

// Connect establishes a connection pool to the database configured at
// database.url and verifies it with a ping.
func Connect(ctx context.Context) error {
	myPool, err := pgxpool.Connect(ctx, viper.GetString("database.url"))
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to pool")
		return err
	}
	if err = myPool.Ping(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not ping database server")
		return err
	}
	SetPool(myPool)
	return nil
}

// LogOpenTransactions writes an INFO log for each open transaction
func LogOpenTransactions() {
	for k, v := range openTransactions {
		log.Info().Str("TrxId", k).Str("Caller", v).Msg("open transaction")
	}
}

// TrxForUser creates a transaction with the user's role active. The fvapi
// role only has enough privileges to create roles and switch to them; all
// real work happens under a user role that row level security restricts to
// that user's data. If the role does not exist yet it is created and the
// call retried.
func TrxForUser(ctx context.Context, userID string) (pgx.Tx, error) {
	trx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	_, file, lineno, ok := runtime.Caller(1)
	caller := fmt.Sprintf("[%v] %s:%d", ok, file, lineno)
	trxID := uuid.New().String()
	openTransactions[trxID] = caller

	wrappedTrx := &UserTx{
		id:   trxID,
		user: userID,
		tx:   trx,
	}

	subLog := log.With().Str("UserID", userID).Logger()

	ident := pgx.Identifier{userID}
	sql := fmt.Sprintf("SET ROLE %s", ident.Sanitize())
	if _, err = wrappedTrx.Exec(ctx, sql); err != nil {
		subLog.Warn().Stack().Err(err).Msg("role does not exist")
		if err := wrappedTrx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
			return nil, err
		}
		if err = createUser(ctx, userID); err != nil {
			log.Error().Stack().Err(err).Msg("could not create user")
			return nil, err
		}
		return TrxForUser(ctx, userID)
	}

	return wrappedTrx, nil
}
