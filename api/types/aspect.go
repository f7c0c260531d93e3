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

package types

import (
	"fmt"
	"strings"
	"sync"
)

// The interfaces below provide the AOP (Aspect Oriented Programming) mechanism
// for method invocations. An aspect adds behavior around a target call without
// modifying the target, which keeps common concerns (logging, validation,
// metrics) out of the business logic.
//
// 以下接口提供方法调用的 AOP(面向切面编程)机制。
//   - 它允许在不修改目标方法的情况下，对方法调用添加额外的行为。
//   - 它允许把公共行为（例如：日志、参数校验、指标统计）从业务逻辑中分离出来。

// AdviceKind 增强点类型
type AdviceKind int

const (
	// Before runs before the target call
	Before AdviceKind = iota
	// Around wraps the target call and receives a Proceed continuation
	Around
	// AfterReturning runs after the target returned normally
	AfterReturning
	// AfterThrowing runs after the call failed
	AfterThrowing
	// After runs unconditionally once the call ended
	After
)

// AdviceKinds lists every kind in the order an aspect is expanded at registration.
var AdviceKinds = []AdviceKind{Before, Around, AfterReturning, AfterThrowing, After}

func (k AdviceKind) String() string {
	switch k {
	case Before:
		return "before"
	case Around:
		return "around"
	case AfterReturning:
		return "afterReturning"
	case AfterThrowing:
		return "afterThrowing"
	case After:
		return "after"
	default:
		return fmt.Sprintf("AdviceKind(%d)", int(k))
	}
}

// ParseAdviceKind is case-insensitive and accepts after-returning style names.
func ParseAdviceKind(name string) (AdviceKind, error) {
	n := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, "-", ""), "_", ""))
	for _, k := range AdviceKinds {
		if strings.ToLower(k.String()) == n {
			return k, nil
		}
	}
	return Before, fmt.Errorf("unknown advice kind %q", name)
}

// Aspect is the base interface for advice
// Aspect 增强点接口的基类
type Aspect interface {
	//Order returns the execution order, the smaller the value, the higher the priority
	//Order 返回执行顺序，值越小，优先级越高
	Order() int
}

// PointCutAspect is implemented by aspects that decide for themselves which
// invocations they apply to. Aspects without it match every invocation.
// PointCutAspect 声明切入点的切面
type PointCutAspect interface {
	Aspect
	//PointCut declares a cut-in point, used to determine whether to execute the advice
	//PointCut 声明一个切入点，用于判断是否需要执行增强点
	PointCut(inv *Invocation) bool
}

// BeforeAspect 目标方法执行之前的增强点接口
type BeforeAspect interface {
	Aspect
	// Before runs ahead of the target. A non-nil error stops the remaining
	// before advice and the target call; the error becomes the call's failure.
	// Before 返回错误时，后续前置增强点和目标方法都不会执行
	Before(inv *Invocation) error
}

// AfterAspect 目标方法结束之后（无论成功或失败）的增强点接口
type AfterAspect interface {
	Aspect
	After(inv *Invocation)
}

// AfterReturningAspect 目标方法正常返回之后的增强点接口
type AfterReturningAspect interface {
	Aspect
	// AfterReturning observes the exact value returned by the target. A
	// non-nil error fails the call but does not trigger AfterThrowing advice.
	AfterReturning(inv *Invocation, result Value) error
}

// AfterThrowingAspect 目标方法抛出错误之后的增强点接口
type AfterThrowingAspect interface {
	Aspect
	// AfterThrowing observes the failure. It cannot replace or swallow it.
	AfterThrowing(inv *Invocation, err error)
}

// Proceed continues the chain toward the target call.
// Proceed 继续执行下一个环绕增强点或者目标方法
type Proceed func() (Value, error)

// AroundAspect 目标方法环绕增强点接口
type AroundAspect interface {
	Aspect
	// Around wraps the next stage. It may call proceed zero or one time, and
	// may transform the result or the error it returns.
	// Around 可以不调用或者调用一次 proceed，并可以修改返回值或者错误
	Around(inv *Invocation, proceed Proceed) (Value, error)
}

// PointCut decides whether an advice applies to an invocation. It must be
// side-effect free and deterministic.
type PointCut func(inv *Invocation) bool

// Predicate is the applicability decision the registry consults for every
// (advice, invocation) pair.
type Predicate func(advice Advice, inv *Invocation) bool

// DefaultPredicate delegates to the advice's own PointCut.
func DefaultPredicate(advice Advice, inv *Invocation) bool {
	return advice.Matches(inv)
}

// Advice is one registered unit of cross-cutting behavior: a single kind of
// a single aspect, with the order and pointcut it was registered under.
// Advice 注册后的增强点，不可变
type Advice struct {
	// Id 增强点ID
	Id string
	// Kind 增强点类型
	Kind AdviceKind
	// Order 执行顺序，值越小越先执行
	Order int
	// Seq registration sequence, breaks ties between equal orders
	Seq uint64
	// Aspect implements the interface matching Kind
	Aspect Aspect
	// PointCut nil matches every invocation
	PointCut PointCut
}

// Matches evaluates the advice's pointcut.
func (a Advice) Matches(inv *Invocation) bool {
	if a.PointCut == nil {
		return true
	}
	return a.PointCut(inv)
}

// Less reports whether a runs before b: lower order first, then first registered.
func (a Advice) Less(b Advice) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.Seq < b.Seq
}

func (a Advice) String() string {
	return fmt.Sprintf("%s[%s,order=%d]", a.Id, a.Kind, a.Order)
}

// AdviceList ordered list of advice
type AdviceList []Advice

// Split groups the list by kind, keeping the relative order inside each group.
func (list AdviceList) Split() (before, around, afterReturning, afterThrowing, after AdviceList) {
	for _, item := range list {
		switch item.Kind {
		case Before:
			before = append(before, item)
		case Around:
			around = append(around, item)
		case AfterReturning:
			afterReturning = append(afterReturning, item)
		case AfterThrowing:
			afterThrowing = append(afterThrowing, item)
		case After:
			after = append(after, item)
		}
	}
	return
}

// Filter keeps the advice whose kind is in kinds.
func (list AdviceList) Filter(kinds ...AdviceKind) AdviceList {
	var out AdviceList
	for _, item := range list {
		for _, k := range kinds {
			if item.Kind == k {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Implements reports whether aspect provides the method for kind.
func Implements(aspect Aspect, kind AdviceKind) bool {
	switch kind {
	case Before:
		_, ok := aspect.(BeforeAspect)
		return ok
	case Around:
		_, ok := aspect.(AroundAspect)
		return ok
	case AfterReturning:
		_, ok := aspect.(AfterReturningAspect)
		return ok
	case AfterThrowing:
		_, ok := aspect.(AfterThrowingAspect)
		return ok
	case After:
		_, ok := aspect.(AfterAspect)
		return ok
	}
	return false
}

// KindsAspect optionally narrows the kinds an aspect contributes. Kinds it
// lists but does not implement are ignored.
// KindsAspect 可选接口，限制切面注册哪些增强点类型
type KindsAspect interface {
	Aspect
	Kinds() []AdviceKind
}

// Configuration 切面配置
type Configuration map[string]interface{}

// TypedAspect is an aspect that can be created by name from an aspect DSL.
// TypedAspect 可以通过DSL按类型创建的切面
type TypedAspect interface {
	Aspect
	// Type 切面类型，例如：logging
	Type() string
	// New 创建新实例
	New() Aspect
}

// InitAspect is implemented by aspects configured from an aspect DSL.
type InitAspect interface {
	Aspect
	Init(config Config, configuration Configuration) error
}

// LoggerAspect is given the engine logger when the engine registers it.
type LoggerAspect interface {
	Aspect
	SetLogger(logger Logger)
}

// SafeAspectSlice collects typed aspects for registration, safe for concurrent use.
type SafeAspectSlice struct {
	aspects []TypedAspect
	lock    sync.Mutex
}

func (s *SafeAspectSlice) Add(aspects ...TypedAspect) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.aspects = append(s.aspects, aspects...)
}

func (s *SafeAspectSlice) Aspects() []TypedAspect {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]TypedAspect(nil), s.aspects...)
}
