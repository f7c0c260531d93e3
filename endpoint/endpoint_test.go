/*
 * Copyright 2024 The RuleGo Authors.
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

package endpoint

import (
	"testing"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/components/calculator"
	"github.com/rulego/calcaop/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *engine.Engine {
	e, err := engine.New(types.WithLogger(types.DiscardLogger), types.WithAspects(&aspect.Validation{}))
	require.NoError(t, err)
	calculator.Bind(e)
	return e
}

func TestInvoke(t *testing.T) {
	e := newEngine(t)

	reply := Invoke(e, Request{Id: "a1", Target: "arithmeticCalculator", Method: "add", Args: []interface{}{1, 2}})
	assert.False(t, reply.Failed())
	assert.Nil(t, reply.Err())
	assert.Equal(t, "a1", reply.Id)
	assert.Equal(t, []interface{}{1.0, 2.0}, reply.Args)
	assert.Equal(t, 3.0, reply.Result)

	reply = Invoke(e, Request{Target: "arithmeticCalculator", Method: "mul", Args: []interface{}{-5, 2}})
	assert.True(t, reply.Failed())
	assert.NotEmpty(t, reply.Id)
	assert.Equal(t, "Positive numbers only", reply.Error)
	assert.Equal(t, "InvalidArgument", reply.Kind)
	assert.ErrorIs(t, reply.Err(), types.ErrInvalidArgument)
	assert.Nil(t, reply.Result)

	reply = Invoke(e, Request{Target: "arithmeticCalculator", Method: "add", Args: []interface{}{1, []int{2}}})
	assert.Equal(t, "InvalidArgument", reply.Kind)
	assert.ErrorIs(t, reply.Err(), types.ErrUnsupportedValue)
}

func TestExecute(t *testing.T) {
	e := newEngine(t)

	reply := Execute(e, "unitCalculator", "kilometerToMile", "", types.Number(5))
	assert.Equal(t, 3.1, reply.Result)

	tests := []struct {
		target, method string
		err            error
		kind           string
	}{
		{"arithmeticCalculator", "div", calculator.ErrDivideByZero, "TargetFailure"},
		{"arithmeticCalculator", "pow", types.ErrMethodNotFound, "TargetFailure"},
		{"scientificCalculator", "sqrt", types.ErrTargetNotFound, "TargetFailure"},
	}
	for _, tt := range tests {
		reply := Execute(e, tt.target, tt.method, "", types.Number(1), types.Number(0))
		assert.ErrorIs(t, reply.Err(), tt.err, tt.method)
		assert.Equal(t, tt.kind, reply.Kind, tt.method)
	}
}

func TestParseArgs(t *testing.T) {
	assert.Nil(t, ParseArgs(" "))
	args := ParseArgs("4, -2.5,true,kg")
	require.Len(t, args, 4)
	assert.True(t, args[0].Equal(types.Number(4)))
	assert.True(t, args[1].Equal(types.Number(-2.5)))
	assert.True(t, args[2].Equal(types.Bool(true)))
	assert.True(t, args[3].Equal(types.String("kg")))
}
