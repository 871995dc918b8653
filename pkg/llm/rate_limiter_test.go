// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5), "zero rate disables pacing")
	assert.Nil(t, NewLimiter(-1, 5), "negative rate disables pacing")

	l := NewLimiter(2, 5)
	require.NotNil(t, l)
	assert.Equal(t, 2.0, l.refillRate)
	assert.Equal(t, 5.0, l.maxTokens)
	assert.Equal(t, 5.0, l.tokens)

	// Degenerate burst is lifted to one slot
	l = NewLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1.0, l.maxTokens)
}

func TestLimiterBurstThenPace(t *testing.T) {
	l := NewLimiter(50, 3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond, "burst slots must not block")

	// Fourth slot needs a refill: 1/50s = 20ms
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestLimiterWaitCancellation(t *testing.T) {
	l := NewLimiter(0.1, 1) // one slot per ten seconds
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiterNilAdmitsEverything(t *testing.T) {
	var l *Limiter
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiterConcurrentWaiters(t *testing.T) {
	l := NewLimiter(1000, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Wait(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
