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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvocation(t *testing.T) {
	args := []Value{Number(4), Number(2)}
	inv := NewInvocation("arithmeticCalculator", "div", args...)
	assert.NotEmpty(t, inv.Id)
	assert.Equal(t, 2, inv.Arity())
	assert.Equal(t, "[4.0, 2.0]", inv.ArgsString())
	assert.Equal(t, "arithmeticCalculator.div()", inv.String())
	assert.True(t, inv.Arg(0).Equal(Number(4)))
	assert.True(t, inv.Arg(5).IsNull())
	assert.True(t, inv.Arg(-1).IsNull())
	assert.Equal(t, []interface{}{4.0, 2.0}, inv.ArgsInterface())

	other := NewInvocation("arithmeticCalculator", "div", args...)
	assert.NotEqual(t, inv.Id, other.Id)
}

func TestInvocationArgsAreCopied(t *testing.T) {
	args := []Value{Number(1)}
	inv := NewInvocationWithId("id1", "", "kilometerToMile", args...)
	args[0] = Number(-1)
	assert.True(t, inv.Arg(0).Equal(Number(1)))

	got := inv.Args()
	got[0] = Number(-1)
	assert.True(t, inv.Arg(0).Equal(Number(1)))
	assert.Equal(t, "kilometerToMile()", inv.String())
	assert.Equal(t, "[]", NewInvocation("t", "m").ArgsString())
}

func TestInvocationResult(t *testing.T) {
	inv := NewInvocation("t", "add", Number(1), Number(2))
	_, ok := inv.Result()
	assert.False(t, ok)

	inv.SetResult(Number(3))
	inv.SetResult(Number(4))
	result, ok := inv.Result()
	assert.True(t, ok)
	assert.True(t, result.Equal(Number(3)))
}
