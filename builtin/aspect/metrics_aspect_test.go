/*
 * Copyright 2026 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package aspect

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/api/types/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	a := NewMetrics(nil)
	assert.Equal(t, 20, a.Order())
	assert.Equal(t, "metrics", a.Type())

	ok := numbers("add", 1, 2)
	_, err := a.Around(ok, func() (types.Value, error) {
		assert.Equal(t, int64(1), a.GetMetrics().Get().Current)
		return types.Number(3), nil
	})
	require.NoError(t, err)
	ok.SetResult(types.Number(3))
	a.After(ok)

	bad := numbers("div", -1, 2)
	a.AfterThrowing(bad, types.NewInvalidArgumentError(bad, 0, "Positive numbers only"))
	a.After(bad)
	failed := numbers("div", 1, 0)
	a.AfterThrowing(failed, errors.New("divide by zero"))
	a.After(failed)

	s := a.GetMetrics().Get()
	assert.Equal(t, int64(0), s.Current)
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, int64(1), s.Success)
	assert.Equal(t, int64(2), s.Failed)
	assert.Equal(t, int64(1), s.InvalidArgument)
	assert.Equal(t, map[string]int64{"add": 1, "div": 2}, s.Methods)
	assert.Equal(t, []string{"add", "div"}, a.GetMetrics().Methods())

	a.GetMetrics().Reset()
	assert.Equal(t, int64(0), a.GetMetrics().Get().Total)
	assert.Empty(t, a.GetMetrics().Methods())
}

func TestMetricsOf(t *testing.T) {
	m := NewMetrics(nil)
	_, ok := MetricsOf(types.AdviceList{{Aspect: NewLogging(nil)}})
	assert.False(t, ok)
	found, ok := MetricsOf(types.AdviceList{{Aspect: NewLogging(nil)}, {Aspect: m}})
	assert.True(t, ok)
	assert.Same(t, m, found)
}

func TestMetricsReporter(t *testing.T) {
	m := metrics.NewInvocationMetrics()
	m.IncrementTotal()
	m.IncrementSuccess()
	m.IncrementMethod("add")

	logger := &bufferLogger{}
	r, err := NewMetricsReporter("@every 1h", m, logger)
	require.NoError(t, err)
	r.Start()
	r.Report()
	r.Stop()
	lines := logger.Lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "invocations total=1 success=1 failed=0 invalidArgument=0 current=0"))
	assert.Contains(t, lines[0], "add:1")

	_, err = NewMetricsReporter("every minute", m, logger)
	assert.Error(t, err)
}

func TestConcurrencyLimiter(t *testing.T) {
	a := NewConcurrencyLimiter(1)
	assert.Equal(t, 10, a.Order())
	assert.Equal(t, "limiter", a.Type())

	inside := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = a.Around(numbers("add", 1, 2), func() (types.Value, error) {
			close(inside)
			<-release
			return types.Number(3), nil
		})
	}()
	<-inside
	assert.Equal(t, int64(1), a.Current())

	_, err := a.Around(numbers("add", 1, 2), func() (types.Value, error) {
		t.Fatal("proceeded past the limit")
		return types.Null(), nil
	})
	assert.True(t, errors.Is(err, ErrConcurrencyLimitReached))
	assert.Equal(t, types.AdviceFailure, types.Classify(err))

	close(release)
	wg.Wait()
	assert.Equal(t, int64(0), a.Current())

	result, err := a.Around(numbers("add", 1, 2), func() (types.Value, error) { return types.Number(3), nil })
	require.NoError(t, err)
	assert.True(t, result.Equal(types.Number(3)))
}

func TestConcurrencyLimiterInit(t *testing.T) {
	a := (&ConcurrencyLimiter{}).New().(*ConcurrencyLimiter)
	require.NoError(t, a.Init(types.NewConfig(), types.Configuration{"max": 2}))
	assert.Equal(t, int64(2), a.Max)

	unlimited := NewConcurrencyLimiter(0)
	for i := 0; i < 3; i++ {
		assert.True(t, unlimited.acquire())
	}
}
