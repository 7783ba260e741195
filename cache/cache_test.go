/*
Copyright 2025 Bank Recon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSummary struct {
	RunID   string `json:"run_id"`
	Matched int    `json:"matched"`
}

func TestRedisCacheSetGetDelete(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ca, err := newRedisCache([]string{mr.Addr()})
	require.NoError(t, err)

	ctx := context.Background()
	want := cachedSummary{RunID: "run_123", Matched: 7}

	err = ca.Set(ctx, "recon:run:run_123", want, time.Minute)
	assert.NoError(t, err)

	var got cachedSummary
	err = ca.Get(ctx, "recon:run:run_123", &got)
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	err = ca.Delete(ctx, "recon:run:run_123")
	assert.NoError(t, err)
}

func TestRedisCacheMissIsNotAnError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ca, err := newRedisCache([]string{mr.Addr()})
	require.NoError(t, err)

	var got cachedSummary
	err = ca.Get(context.Background(), "recon:run:absent", &got)
	assert.NoError(t, err)
	assert.Empty(t, got.RunID)
}
