/*
 * Copyright 2023 The RuleGo Authors.
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

// Package calcaop intercepts method calls with ordered advice.
//
// # Usage
//
// Register aspects (logging, validation, metrics or your own) and bind the
// target methods on a proxy. Every proxied call runs the applicable advice:
//
//	e, err := calcaop.New(types.WithAspects(
//		aspect.NewLogging(nil),
//		&aspect.Validation{},
//	))
//	arithmetic, unit := calculator.Bind(e)
//	result, err := arithmetic.Call("add", 1, 2) // 3.0
//	_, err = arithmetic.Call("div", -5, 2)     // Positive numbers only
//
// Aspects can also be declared in an aspect DSL:
//
//	{
//	  "style": "combined",
//	  "aspects": [
//	    {"type": "logging", "order": 0},
//	    {"type": "validation", "order": 1, "pointcut": {"type": "args", "kinds": ["number", "number"]}}
//	  ]
//	}
//
// Advice kinds: before, after, afterReturning, afterThrowing and around.
// Lower orders run first; equal orders run in registration order. Discrete
// advice runs outside all around advice.
package calcaop

import (
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/components/calculator"
	"github.com/rulego/calcaop/engine"
)

// Registry aspect types available to the aspect DSL
var Registry = engine.Registry

// New creates an interception engine.
func New(opts ...types.Option) (*engine.Engine, error) {
	return engine.New(opts...)
}

// NewFromDSL creates an engine from an aspect DSL document.
func NewFromDSL(dsl []byte, opts ...types.Option) (*engine.Engine, error) {
	return engine.NewFromDSL(dsl, opts...)
}

// DefaultAspects returns logging (order 0) and validation (order 1) aspects,
// logging through logger.
func DefaultAspects(logger types.Logger) []types.Aspect {
	return []types.Aspect{
		aspect.NewLogging(aspect.LoggerSink{Logger: types.NewLogger(logger)}),
		&aspect.Validation{},
	}
}

// Calculator bundles an engine with the two calculators bound to it.
type Calculator struct {
	Engine     *engine.Engine
	Arithmetic *engine.Proxy
	Unit       *engine.Proxy
}

// NewCalculator creates an engine from opts and binds the calculators.
func NewCalculator(opts ...types.Option) (*Calculator, error) {
	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}
	arithmetic, unit := calculator.Bind(e)
	return &Calculator{Engine: e, Arithmetic: arithmetic, Unit: unit}, nil
}
