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

// funcAspect backs advice built from plain functions.
type funcAspect struct {
	order          int
	before         func(inv *Invocation) error
	after          func(inv *Invocation)
	afterReturning func(inv *Invocation, result Value) error
	afterThrowing  func(inv *Invocation, err error)
	around         func(inv *Invocation, proceed Proceed) (Value, error)
}

func (f *funcAspect) Order() int {
	return f.order
}

func (f *funcAspect) Before(inv *Invocation) error {
	return f.before(inv)
}

func (f *funcAspect) After(inv *Invocation) {
	f.after(inv)
}

func (f *funcAspect) AfterReturning(inv *Invocation, result Value) error {
	return f.afterReturning(inv, result)
}

func (f *funcAspect) AfterThrowing(inv *Invocation, err error) {
	f.afterThrowing(inv, err)
}

func (f *funcAspect) Around(inv *Invocation, proceed Proceed) (Value, error) {
	return f.around(inv, proceed)
}

// NewBeforeAdvice builds a Before advice from a function. A nil pointCut
// matches every invocation. Id and Seq are assigned at registration when empty.
func NewBeforeAdvice(order int, pointCut PointCut, fn func(inv *Invocation) error) Advice {
	return Advice{Kind: Before, Order: order, PointCut: pointCut, Aspect: &funcAspect{order: order, before: fn}}
}

func NewAfterAdvice(order int, pointCut PointCut, fn func(inv *Invocation)) Advice {
	return Advice{Kind: After, Order: order, PointCut: pointCut, Aspect: &funcAspect{order: order, after: fn}}
}

func NewAfterReturningAdvice(order int, pointCut PointCut, fn func(inv *Invocation, result Value) error) Advice {
	return Advice{Kind: AfterReturning, Order: order, PointCut: pointCut, Aspect: &funcAspect{order: order, afterReturning: fn}}
}

func NewAfterThrowingAdvice(order int, pointCut PointCut, fn func(inv *Invocation, err error)) Advice {
	return Advice{Kind: AfterThrowing, Order: order, PointCut: pointCut, Aspect: &funcAspect{order: order, afterThrowing: fn}}
}

func NewAroundAdvice(order int, pointCut PointCut, fn func(inv *Invocation, proceed Proceed) (Value, error)) Advice {
	return Advice{Kind: Around, Order: order, PointCut: pointCut, Aspect: &funcAspect{order: order, around: fn}}
}
