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

package pointcut

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/calcaop/api/types"
)

// Env builds the variables visible to expression and script pointcuts:
// method, target, args (plain Go values), arity and id.
func Env(inv *types.Invocation) map[string]interface{} {
	return map[string]interface{}{
		"id":     inv.Id,
		"method": inv.Method,
		"target": inv.TargetId,
		"args":   inv.ArgsInterface(),
		"arity":  inv.Arity(),
	}
}

// Expr compiles a boolean expr-lang expression over Env. A runtime error or a
// non-boolean result counts as no match.
//
//	method == "div" && args[1] != 0
func Expr(source string) (types.PointCut, error) {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile pointcut expression %q: %w", source, err)
	}
	return exprPointCut(program), nil
}

// MustExpr is Expr that panics on compile errors.
func MustExpr(source string) types.PointCut {
	pc, err := Expr(source)
	if err != nil {
		panic(err)
	}
	return pc
}

func exprPointCut(program *vm.Program) types.PointCut {
	return func(inv *types.Invocation) bool {
		out, err := vm.Run(program, Env(inv))
		if err != nil {
			return false
		}
		result, ok := out.(bool)
		return ok && result
	}
}
