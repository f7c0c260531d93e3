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
	"fmt"

	"github.com/rulego/calcaop/api/types"
)

// Chain executes target calls wrapped by the advice a registry selects.
//
// Discrete advice runs at the outer boundary:
//
//	before... -> [around(outermost) -> ... -> around(innermost) -> target]
//	success: afterReturning... then after...
//	failure: afterThrowing... then after..., then the original error
//
// Within each kind advice runs in ascending order, ties in registration order.
// Chain 拦截链
type Chain struct {
	registry *AdviceRegistry
	style    types.Style
	logger   types.Logger
}

func NewChain(registry *AdviceRegistry, style types.Style, logger types.Logger) *Chain {
	return &Chain{
		registry: registry,
		style:    style,
		logger:   types.NewLogger(logger),
	}
}

// Execute runs target for inv through the applicable advice. Exactly one of
// the result and the error is meaningful: on error the result is Null.
// An invocation that already went through a chain fails with
// ErrInvocationReused without running any advice.
func (c *Chain) Execute(inv *types.Invocation, target types.Target) (types.Value, error) {
	if !inv.Start() {
		return types.Null(), fmt.Errorf("%w: %s", types.ErrInvocationReused, inv.Id)
	}
	return newFrame(inv, c.Advice(inv), c.logger).run(target)
}

// Advice returns the advice Execute would run for inv under the chain's style.
func (c *Chain) Advice(inv *types.Invocation) types.AdviceList {
	return c.registry.ApplicableAdvice(inv).Filter(c.style.Kinds()...)
}

func (c *Chain) Style() types.Style {
	return c.style
}
