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

// Package calculator provides the arithmetic and unit conversion targets the
// aspects are demonstrated on. The operations are pure; Bind exposes them on
// engine proxies so every call goes through the interception chain.
package calculator

import (
	"errors"
	"fmt"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/engine"
)

const (
	// ArithmeticCalculatorId proxy target id of the arithmetic calculator
	ArithmeticCalculatorId = "arithmeticCalculator"
	// UnitCalculatorId proxy target id of the unit calculator
	UnitCalculatorId = "unitCalculator"
)

// ErrDivideByZero is returned by div when the divisor is zero.
var ErrDivideByZero = errors.New("division by zero")

// ArithmeticCalculator add, sub, mul, div
type ArithmeticCalculator struct{}

func (c ArithmeticCalculator) Add(a, b float64) float64 {
	return a + b
}

func (c ArithmeticCalculator) Sub(a, b float64) float64 {
	return a - b
}

func (c ArithmeticCalculator) Mul(a, b float64) float64 {
	return a * b
}

func (c ArithmeticCalculator) Div(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// UnitCalculator 单位换算
type UnitCalculator struct{}

func (c UnitCalculator) KilogramToPound(kilogram float64) float64 {
	return kilogram * 2.2
}

func (c UnitCalculator) KilometerToMile(kilometer float64) float64 {
	return kilometer * 0.62
}

// Bind registers both calculators on e under their target ids.
func Bind(e *engine.Engine) (arithmetic, unit *engine.Proxy) {
	var ac ArithmeticCalculator
	arithmetic = e.NewProxy(ArithmeticCalculatorId).
		Bind("add", binary(ac.Add)).
		Bind("sub", binary(ac.Sub)).
		Bind("mul", binary(ac.Mul)).
		Bind("div", binaryE(ac.Div))

	var uc UnitCalculator
	unit = e.NewProxy(UnitCalculatorId).
		Bind("kilogramToPound", unary(uc.KilogramToPound)).
		Bind("kilometerToMile", unary(uc.KilometerToMile))
	return arithmetic, unit
}

func binary(fn func(a, b float64) float64) types.Target {
	return binaryE(func(a, b float64) (float64, error) {
		return fn(a, b), nil
	})
}

func binaryE(fn func(a, b float64) (float64, error)) types.Target {
	return func(args []types.Value) (types.Value, error) {
		nums, err := numbers(args, 2)
		if err != nil {
			return types.Null(), err
		}
		result, err := fn(nums[0], nums[1])
		if err != nil {
			return types.Null(), err
		}
		return types.Number(result), nil
	}
}

func unary(fn func(a float64) float64) types.Target {
	return func(args []types.Value) (types.Value, error) {
		nums, err := numbers(args, 1)
		if err != nil {
			return types.Null(), err
		}
		return types.Number(fn(nums[0])), nil
	}
}

// ErrBadArguments is returned when a method gets the wrong arity or a
// non-numeric argument.
var ErrBadArguments = errors.New("bad arguments")

func numbers(args []types.Value, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrBadArguments, n, len(args))
	}
	out := make([]float64, n)
	for i, arg := range args {
		f, ok := arg.Float64()
		if !ok {
			return nil, fmt.Errorf("%w: argument %d is %s", ErrBadArguments, i, arg.Kind())
		}
		out[i] = f
	}
	return out, nil
}
