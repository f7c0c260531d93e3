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

package calculator

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferLogger struct {
	lock  sync.Mutex
	lines []string
}

func (l *bufferLogger) Printf(format string, v ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *bufferLogger) reset() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	lines := l.lines
	l.lines = nil
	return lines
}

func TestCalculators(t *testing.T) {
	var ac ArithmeticCalculator
	assert.Equal(t, 3.0, ac.Add(1, 2))
	assert.Equal(t, 1.0, ac.Sub(4, 3))
	assert.Equal(t, 6.0, ac.Mul(2, 3))
	v, err := ac.Div(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
	_, err = ac.Div(1, 0)
	assert.Equal(t, ErrDivideByZero, err)

	var uc UnitCalculator
	assert.Equal(t, "22.0", types.Number(uc.KilogramToPound(10)).String())
	assert.Equal(t, "3.1", types.Number(uc.KilometerToMile(5)).String())
}

func newCalculator(t *testing.T, logger types.Logger, kinds ...types.AdviceKind) (*engine.Proxy, *engine.Proxy) {
	e, err := engine.New(types.WithLogger(types.DiscardLogger), types.WithAspects(
		aspect.NewLogging(aspect.LoggerSink{Logger: logger}, kinds...),
		&aspect.Validation{},
	))
	require.NoError(t, err)
	return Bind(e)
}

func TestBindDiscreteLogging(t *testing.T) {
	logger := &bufferLogger{}
	arithmetic, unit := newCalculator(t, logger, types.Before)
	assert.Equal(t, []string{"add", "div", "mul", "sub"}, arithmetic.Methods())
	assert.Equal(t, []string{"kilogramToPound", "kilometerToMile"}, unit.Methods())

	tests := []struct {
		proxy  *engine.Proxy
		method string
		args   []interface{}
		want   string
		log    string
	}{
		{arithmetic, "add", []interface{}{1, 2}, "3.0", "The method add() begins with [1.0, 2.0]"},
		{arithmetic, "sub", []interface{}{4, 3}, "1.0", "The method sub() begins with [4.0, 3.0]"},
		{arithmetic, "mul", []interface{}{2, 3}, "6.0", "The method mul() begins with [2.0, 3.0]"},
		{arithmetic, "div", []interface{}{4, 2}, "2.0", "The method div() begins with [4.0, 2.0]"},
		{unit, "kilogramToPound", []interface{}{10}, "22.0", "The method kilogramToPound() begins with [10.0]"},
		{unit, "kilometerToMile", []interface{}{5}, "3.1", "The method kilometerToMile() begins with [5.0]"},
	}
	for _, tt := range tests {
		result, err := tt.proxy.Call(tt.method, tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, result.String())
		assert.Equal(t, []string{tt.log}, logger.reset())
	}
}

func TestBindCombinedLogging(t *testing.T) {
	logger := &bufferLogger{}
	arithmetic, _ := newCalculator(t, logger)

	result, err := arithmetic.Call("add", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "3.0", result.String())
	assert.Equal(t, []string{
		"The method add() begins with [1.0, 2.0]",
		"The method add() begins with [1.0, 2.0]",
		"The method add() ends with 3.0",
		"The method add() ends with 3.0",
		"The method add() ends",
	}, logger.reset())

	_, err = arithmetic.Call("div", -5, 2)
	assert.EqualError(t, err, "Positive numbers only")
	assert.Equal(t, []string{
		"The method div() begins with [-5.0, 2.0]",
		"Illegal argument [-5.0, 2.0] in div()",
		"The method div() ends",
	}, logger.reset())
}

func TestBindTargetFailures(t *testing.T) {
	arithmetic, unit := newCalculator(t, types.DiscardLogger)

	_, err := arithmetic.Call("div", 1, 0)
	assert.True(t, errors.Is(err, ErrDivideByZero))
	assert.Equal(t, types.TargetFailure, types.Classify(err))

	_, err = arithmetic.Call("add", 1)
	assert.True(t, errors.Is(err, ErrBadArguments))
	_, err = unit.Call("kilogramToPound", "ten")
	assert.True(t, errors.Is(err, ErrBadArguments))

	// unit conversions take one argument, so validation does not apply
	result, err := unit.Call("kilometerToMile", -5)
	require.NoError(t, err)
	assert.Equal(t, "-3.1", result.String())
}
