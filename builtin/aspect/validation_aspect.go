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
	"fmt"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/pointcut"
	"github.com/rulego/calcaop/utils/maps"
)

var (
	_ types.BeforeAspect   = (*Validation)(nil)
	_ types.AroundAspect   = (*Validation)(nil)
	_ types.PointCutAspect = (*Validation)(nil)
	_ types.KindsAspect    = (*Validation)(nil)
	_ types.InitAspect     = (*Validation)(nil)
)

const (
	// DefaultValidationMessage is the message of the invalid-argument error
	DefaultValidationMessage = "Positive numbers only"
	// ValidationModeBefore validates in before advice
	ValidationModeBefore = "before"
	// ValidationModeAround validates in around advice, before proceeding
	ValidationModeAround = "around"
)

// ValidationConfig 参数校验切面配置
type ValidationConfig struct {
	// Message 校验失败错误信息，默认 Positive numbers only
	Message string
	// Min smallest accepted numeric argument, default 0
	Min float64
	// Mode before or around, default before
	Mode string
}

// Validation rejects numeric arguments below Min. Its default pointcut is
// every method taking exactly two numeric arguments.
//
// Validation 参数校验切面，切入点：两个数值参数的方法
type Validation struct {
	Config ValidationConfig
}

func (a *Validation) Order() int {
	return 1
}

func (a *Validation) Type() string {
	return "validation"
}

func (a *Validation) New() types.Aspect {
	return &Validation{}
}

func (a *Validation) Init(config types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &a.Config); err != nil {
		return err
	}
	switch a.Config.Mode {
	case "", ValidationModeBefore, ValidationModeAround:
		return nil
	default:
		return fmt.Errorf("unknown validation mode %q", a.Config.Mode)
	}
}

// PointCut execution(* *.*(double, double))
func (a *Validation) PointCut(inv *types.Invocation) bool {
	return twoNumbers(inv)
}

var twoNumbers = pointcut.Args(types.NumberKind, types.NumberKind)

func (a *Validation) Kinds() []types.AdviceKind {
	if a.Config.Mode == ValidationModeAround {
		return []types.AdviceKind{types.Around}
	}
	return []types.AdviceKind{types.Before}
}

func (a *Validation) Before(inv *types.Invocation) error {
	return a.validate(inv)
}

// Around validates and only proceeds when every argument is accepted.
func (a *Validation) Around(inv *types.Invocation, proceed types.Proceed) (types.Value, error) {
	if err := a.validate(inv); err != nil {
		return types.Null(), err
	}
	return proceed()
}

func (a *Validation) validate(inv *types.Invocation) error {
	for i, arg := range inv.Args() {
		if f, ok := arg.Float64(); ok && f < a.Config.Min {
			return types.NewInvalidArgumentError(inv, i, a.message())
		}
	}
	return nil
}

func (a *Validation) message() string {
	if a.Config.Message == "" {
		return DefaultValidationMessage
	}
	return a.Config.Message
}
