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

package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/utils/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferLogger keeps formatted log lines.
type bufferLogger struct {
	lock  sync.Mutex
	lines []string
}

func (l *bufferLogger) Printf(format string, v ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *bufferLogger) Lines() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string(nil), l.lines...)
}

func div(calls *int32) types.Target {
	return func(args []types.Value) (types.Value, error) {
		atomic.AddInt32(calls, 1)
		a, _ := args[0].Float64()
		b, _ := args[1].Float64()
		return types.Number(a / b), nil
	}
}

func TestAddReturnsSum(t *testing.T) {
	r := &recorder{}
	var observed types.Value
	returning := types.NewAfterReturningAdvice(0, nil, func(inv *types.Invocation, result types.Value) error {
		observed = result
		return nil
	})
	e, err := New(types.WithLogger(types.DiscardLogger),
		types.WithAspects(&aspect.Validation{}), types.WithAdvice(returning))
	require.NoError(t, err)

	result, err := e.Invoke("arithmeticCalculator", "add", r.add2(), types.Number(1), types.Number(2))
	require.NoError(t, err)
	assert.True(t, result.Equal(types.Number(3)))
	assert.True(t, observed.Equal(types.Number(3)))
	assert.Equal(t, []string{"target"}, r.get())
}

func TestNegativeArgumentIsRejected(t *testing.T) {
	logger := &bufferLogger{}
	var calls int32
	e, err := New(types.WithLogger(types.DiscardLogger), types.WithAspects(
		aspect.NewLogging(aspect.LoggerSink{Logger: logger}, types.AfterThrowing, types.After),
		&aspect.Validation{},
	))
	require.NoError(t, err)

	result, err := e.Invoke("arithmeticCalculator", "validate", div(&calls), types.Number(-5), types.Number(2))
	require.Error(t, err)
	assert.True(t, result.IsNull())
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
	assert.Equal(t, types.InvalidArgument, types.Classify(err))
	assert.EqualError(t, err, "Positive numbers only")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	var invalid *types.InvalidArgumentError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 0, invalid.Index)
	assert.Equal(t, []string{"Illegal argument [-5.0, 2.0] in validate()", "The method validate() ends"}, logger.Lines())
}

func TestAroundLoggingDiv(t *testing.T) {
	var events []aspect.Event
	sink := aspect.EventSinkFunc(func(event aspect.Event) { events = append(events, event) })
	var calls int32
	e, err := New(types.WithLogger(types.DiscardLogger), types.WithStyle(types.StyleAround),
		types.WithAspects(aspect.NewLogging(sink)))
	require.NoError(t, err)

	result, err := e.Invoke("arithmeticCalculator", "div", div(&calls), types.Number(4), types.Number(2))
	require.NoError(t, err)
	assert.True(t, result.Equal(types.Number(2)))
	assert.Equal(t, int32(1), calls)

	require.Len(t, events, 2)
	assert.Equal(t, aspect.CallBegin, events[0].Type)
	assert.Equal(t, "[4.0, 2.0]", events[0].Invocation.ArgsString())
	assert.Equal(t, aspect.CallReturned, events[1].Type)
	assert.True(t, events[1].Result.Equal(types.Number(2)))
}

func TestSamePriorityRunsInRegistrationOrder(t *testing.T) {
	r := &recorder{}
	e := newTestEngine(t, types.StyleCombined, r.before(0, "A"), r.before(0, "B"))
	_, err := e.Execute(addInvocation(1, 2), r.add2())
	require.NoError(t, err)
	assert.Equal(t, []string{"before A", "before B", "target"}, r.get())
}

func TestValidationAroundMode(t *testing.T) {
	validation := &aspect.Validation{Config: aspect.ValidationConfig{Mode: aspect.ValidationModeAround}}
	var calls int32
	e, err := New(types.WithLogger(types.DiscardLogger), types.WithAspects(validation))
	require.NoError(t, err)
	_, err = e.Invoke("arithmeticCalculator", "div", div(&calls), types.Number(4), types.Number(-2))
	assert.Equal(t, types.InvalidArgument, types.Classify(err))
	assert.Equal(t, int32(0), calls)
}

func TestProxy(t *testing.T) {
	r := &recorder{}
	e := newTestEngine(t, types.StyleCombined, r.before(0, "b0"))
	p := e.NewProxy("arithmeticCalculator").Bind("add", r.add2())
	assert.Same(t, p, e.NewProxy("arithmeticCalculator"))
	assert.Equal(t, []string{"add"}, p.Methods())
	assert.Equal(t, []string{"arithmeticCalculator"}, e.Targets())

	result, err := p.Call("add", 1, 2)
	require.NoError(t, err)
	assert.True(t, result.Equal(types.Number(3)))

	result, err = e.Call("arithmeticCalculator", "add", types.Number(2), types.Number(2))
	require.NoError(t, err)
	assert.True(t, result.Equal(types.Number(4)))

	_, err = p.Invoke("mod", types.Number(1))
	assert.True(t, errors.Is(err, types.ErrMethodNotFound))
	_, err = e.Call("unitCalculator", "kilogramToPound", types.Number(1))
	assert.True(t, errors.Is(err, types.ErrTargetNotFound))
	_, err = p.Call("add", []int{1})
	assert.True(t, errors.Is(err, types.ErrUnsupportedValue))
	_, err = p.Execute(types.NewInvocation("unitCalculator", "add", types.Number(1), types.Number(2)))
	assert.True(t, errors.Is(err, types.ErrMethodNotFound))

	// unknown methods run no advice
	assert.Equal(t, []string{"before b0", "target", "before b0", "target"}, r.get())
}

func TestInvokeAsync(t *testing.T) {
	wp := pool.New(4, time.Second)
	defer wp.Stop()
	e, err := New(types.WithLogger(types.DiscardLogger), types.WithPool(wp), types.WithAspects(&aspect.Validation{}))
	require.NoError(t, err)
	p := e.NewProxy("arithmeticCalculator").Bind("add", (&recorder{}).add2())

	done := make(chan error, 2)
	results := make(chan types.Value, 2)
	callback := func(result types.Value, err error) {
		results <- result
		done <- err
	}
	require.NoError(t, p.InvokeAsync("add", callback, types.Number(1), types.Number(2)))
	require.NoError(t, <-done)
	assert.True(t, (<-results).Equal(types.Number(3)))

	require.NoError(t, p.InvokeAsync("add", callback, types.Number(-1), types.Number(2)))
	assert.Equal(t, types.InvalidArgument, types.Classify(<-done))
	assert.True(t, (<-results).IsNull())

	assert.True(t, errors.Is(p.InvokeAsync("mod", callback), types.ErrMethodNotFound))
}

func TestGoWithoutPool(t *testing.T) {
	e := newTestEngine(t, types.StyleCombined)
	done := make(chan types.Value, 1)
	require.NoError(t, e.Go(addInvocation(2, 3), (&recorder{}).add2(), func(result types.Value, err error) {
		done <- result
	}))
	assert.True(t, (<-done).Equal(types.Number(5)))
}

func TestConcurrentInvocations(t *testing.T) {
	var before int64
	counting := types.NewBeforeAdvice(0, nil, func(*types.Invocation) error {
		atomic.AddInt64(&before, 1)
		return nil
	})
	e, err := New(types.WithLogger(types.DiscardLogger), types.WithAdvice(counting),
		types.WithAspects(&aspect.Validation{}, aspect.NewMetrics(nil)))
	require.NoError(t, err)
	e.Freeze()
	p := e.NewProxy("arithmeticCalculator").Bind("add", (&recorder{}).add2())

	var wg sync.WaitGroup
	var failed int64
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := float64(i)
			if i%10 == 0 {
				a = -a - 1
			}
			result, err := p.Invoke("add", types.Number(a), types.Number(1))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			if !result.Equal(types.Number(a + 1)) {
				t.Errorf("add(%v, 1) = %s", a, result)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(100), before)
	assert.Equal(t, int64(10), failed)

	m, ok := aspect.MetricsOf(e.Registry().All())
	require.True(t, ok)
	snapshot := m.GetMetrics().Get()
	assert.Equal(t, int64(100), snapshot.Total)
	assert.Equal(t, int64(10), snapshot.InvalidArgument)
	assert.Equal(t, int64(90), snapshot.Success)
	assert.Equal(t, int64(0), snapshot.Current)
}

func TestNewErrors(t *testing.T) {
	failing := func(*types.Config) error { return errors.New("bad option") }
	_, err := New(failing)
	assert.EqualError(t, err, "bad option")

	_, err = New(types.WithAspects(orderOnly{}))
	assert.Error(t, err)
}

func TestLoggingAspectUsesEngineLogger(t *testing.T) {
	r := &recorder{}
	logger := &bufferLogger{}
	e, err := New(types.WithLogger(logger), types.WithAspects(&aspect.Logging{}))
	require.NoError(t, err)

	result, err := e.Invoke("arithmeticCalculator", "add", r.add2(), types.Number(1), types.Number(2))
	require.NoError(t, err)
	assert.True(t, result.Equal(types.Number(3)))
	assert.Contains(t, logger.Lines(), "The method add() begins with [1.0, 2.0]")
}
