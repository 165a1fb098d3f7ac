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

package common

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
)

var ctx = context.Background()
var rdb *redis.Client
var cache *lru.Cache

// SetupCache initializes the local LRU cache and, when cache.redis_url is
// set, the shared redis layer
func SetupCache() {
	var err error
	if redisURL := viper.GetString("cache.redis_url"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			os.Exit(1)
		}

		rdb = redis.NewClient(opt)
	}

	localSize := viper.GetInt("cache.local_size")
	if localSize <= 0 {
		localSize = 1024
	}

	cache, err = lru.New(localSize)
	if err != nil {
		log.Error().Err(err).Msg("could not create LRU cache")
		os.Exit(1)
	}
}

// PurgeCache drops all entries from the local cache layer; redis entries are
// left to expire on their own TTL
func PurgeCache() {
	if cache != nil {
		cache.Purge()
	}
}

// CacheKey computes a stable hex key for the given payload segments using blake3
func CacheKey(segments ...[]byte) string {
	h := blake3.New()
	for _, segment := range segments {
		if _, err := h.Write(segment); err != nil {
			log.Error().Stack().Err(err).Msg("could not write segment to blake3 hasher")
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ErrCacheMiss indicates the key is in neither cache layer
var ErrCacheMiss = errors.New("cache miss")

// CacheSet stores an lz4-compressed payload in the local cache and, when
// enabled, the redis layer
func CacheSet(key string, payload []byte) error {
	if cache == nil {
		return nil
	}

	b2, err := compress(payload)
	if err != nil {
		return err
	}
	cache.Add(key, b2)

	if rdb != nil {
		expires := time.Duration(viper.GetInt("cache.ttl")) * time.Second
		return rdb.Set(ctx, key, b2, expires).Err()
	}
	return nil
}

// CacheGet retrieves and decompresses a payload previously stored with CacheSet
func CacheGet(key string) ([]byte, error) {
	if cache == nil {
		return nil, ErrCacheMiss
	}

	if v2, ok := cache.Get(key); ok {
		return decompress(v2.([]byte))
	}

	if rdb != nil {
		expires := time.Duration(viper.GetInt("cache.ttl")) * time.Second
		val, err := rdb.GetEx(ctx, key, expires).Bytes()
		if err != nil {
			return nil, ErrCacheMiss
		}
		return decompress(val)
	}

	return nil, ErrCacheMiss
}

func compress(in []byte) ([]byte, error) {
	r := bytes.NewReader(in)
	w := &bytes.Buffer{}
	zw := lz4.NewWriter(w)
	if _, err := io.Copy(zw, r); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decompress(in []byte) ([]byte, error) {
	r := bytes.NewReader(in)
	w := &bytes.Buffer{}
	zr := lz4.NewReader(r)
	if _, err := io.Copy(w, zr); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
