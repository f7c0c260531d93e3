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

// Package pointcut builds the predicates that decide which invocations an
// advice applies to. It matches on method name, target id, arity and argument
// kinds, plus expr-lang expressions and JavaScript functions for anything
// else. It does not parse AspectJ-style signature patterns.
//
// Package pointcut 构建切入点判断函数。
//
//	// execution(* *.*(..))
//	pointcut.Any()
//	// execution(* *.*(double, double))
//	pointcut.Args(types.NumberKind, types.NumberKind)
//	pointcut.Expr(`method in ["add", "sub"] && arity == 2`)
package pointcut

import (
	"github.com/rulego/calcaop/api/types"
)

// Any matches every invocation.
func Any() types.PointCut {
	return func(inv *types.Invocation) bool {
		return true
	}
}

// None matches nothing.
func None() types.PointCut {
	return func(inv *types.Invocation) bool {
		return false
	}
}

// Methods matches invocations of any of the named methods.
func Methods(names ...string) types.PointCut {
	set := toSet(names)
	return func(inv *types.Invocation) bool {
		_, ok := set[inv.Method]
		return ok
	}
}

// Targets matches invocations on any of the given target ids.
func Targets(ids ...string) types.PointCut {
	set := toSet(ids)
	return func(inv *types.Invocation) bool {
		_, ok := set[inv.TargetId]
		return ok
	}
}

// Arity matches invocations with exactly n arguments.
func Arity(n int) types.PointCut {
	return func(inv *types.Invocation) bool {
		return inv.Arity() == n
	}
}

// Args matches invocations whose arguments have exactly the given kinds.
func Args(kinds ...types.ValueKind) types.PointCut {
	want := append([]types.ValueKind(nil), kinds...)
	return func(inv *types.Invocation) bool {
		if inv.Arity() != len(want) {
			return false
		}
		for i, k := range want {
			if inv.Arg(i).Kind() != k {
				return false
			}
		}
		return true
	}
}

// And matches when every pointcut matches. No pointcuts matches everything.
func And(pointCuts ...types.PointCut) types.PointCut {
	return func(inv *types.Invocation) bool {
		for _, pc := range pointCuts {
			if pc != nil && !pc(inv) {
				return false
			}
		}
		return true
	}
}

// Or matches when any pointcut matches. No pointcuts matches nothing.
func Or(pointCuts ...types.PointCut) types.PointCut {
	return func(inv *types.Invocation) bool {
		for _, pc := range pointCuts {
			if pc != nil && pc(inv) {
				return true
			}
		}
		return false
	}
}

func Not(pointCut types.PointCut) types.PointCut {
	return func(inv *types.Invocation) bool {
		return !pointCut(inv)
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
