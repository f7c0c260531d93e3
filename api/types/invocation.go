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
	"strings"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"
)

// Target is the real call wrapped by the chain. The engine never inspects it.
// Target 被拦截的目标方法
type Target func(args []Value) (Value, error)

// Invocation describes one target call passing through the chain. Arguments
// are copied on the way in and out, so advice cannot mutate them.
// Invocation 一次目标方法调用的描述，构造后不可变
type Invocation struct {
	// Id 调用ID，每次调用唯一
	Id string
	// TargetId 目标对象标识，例如 arithmeticCalculator
	TargetId string
	// Method 方法名
	Method string
	args   []Value
	// result is written once by the chain after a successful target call
	result    Value
	hasResult bool
	started   atomic.Bool
}

// NewInvocation creates an invocation with a fresh uuid v4 id.
func NewInvocation(targetId, method string, args ...Value) *Invocation {
	uuId, _ := uuid.NewV4()
	return NewInvocationWithId(uuId.String(), targetId, method, args...)
}

func NewInvocationWithId(id, targetId, method string, args ...Value) *Invocation {
	return &Invocation{
		Id:       id,
		TargetId: targetId,
		Method:   method,
		args:     append([]Value(nil), args...),
	}
}

func (inv *Invocation) Arity() int {
	return len(inv.args)
}

// Arg returns the i-th argument, or Null if out of range.
func (inv *Invocation) Arg(i int) Value {
	if i < 0 || i >= len(inv.args) {
		return Null()
	}
	return inv.args[i]
}

// Args returns a copy of the argument list.
func (inv *Invocation) Args() []Value {
	return append([]Value(nil), inv.args...)
}

// ArgsInterface returns the arguments as plain Go values.
func (inv *Invocation) ArgsInterface() []interface{} {
	out := make([]interface{}, len(inv.args))
	for i, arg := range inv.args {
		out[i] = arg.Interface()
	}
	return out
}

// ArgsString formats the arguments like java.util.Arrays.toString: [1.0, 2.0]
func (inv *Invocation) ArgsString() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, arg := range inv.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Start marks the invocation as executing. It returns false when it was
// started before; an invocation runs through the chain at most once.
func (inv *Invocation) Start() bool {
	return inv.started.CompareAndSwap(false, true)
}

// Result returns the value recorded after a successful call.
func (inv *Invocation) Result() (Value, bool) {
	return inv.result, inv.hasResult
}

// SetResult fills the return slot. Only the first call has effect.
func (inv *Invocation) SetResult(v Value) {
	if inv.hasResult {
		return
	}
	inv.result = v
	inv.hasResult = true
}

func (inv *Invocation) String() string {
	if inv.TargetId == "" {
		return inv.Method + "()"
	}
	return inv.TargetId + "." + inv.Method + "()"
}
