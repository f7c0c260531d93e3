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
	"time"
)

// Style selects which advice kinds take part in a chain execution.
// Style 拦截链执行风格
type Style int

const (
	// StyleCombined runs discrete advice at the outer boundary and around advice inside.
	StyleCombined Style = iota
	// StyleDiscrete runs before/after/afterReturning/afterThrowing advice only.
	StyleDiscrete
	// StyleAround runs around advice only.
	StyleAround
)

func (s Style) String() string {
	switch s {
	case StyleDiscrete:
		return "discrete"
	case StyleAround:
		return "around"
	default:
		return "combined"
	}
}

// ParseStyle 解析执行风格，空字符串为 combined
func ParseStyle(name string) (Style, bool) {
	switch name {
	case "", "combined":
		return StyleCombined, true
	case "discrete":
		return StyleDiscrete, true
	case "around":
		return StyleAround, true
	}
	return StyleCombined, false
}

// Kinds returns the advice kinds the style admits.
func (s Style) Kinds() []AdviceKind {
	switch s {
	case StyleDiscrete:
		return []AdviceKind{Before, AfterReturning, AfterThrowing, After}
	case StyleAround:
		return []AdviceKind{Around}
	default:
		return AdviceKinds
	}
}

// Config 拦截引擎配置
type Config struct {
	// Logger 日志记录接口，默认使用：DefaultLogger()
	Logger Logger
	// Aspects registered when the engine is created
	Aspects []Aspect
	// Advice function-backed advice registered after Aspects
	Advice []Advice
	// Predicate applicability decision, default DefaultPredicate
	Predicate Predicate
	// Style 执行风格，默认 StyleCombined
	Style Style
	// ScriptMaxExecutionTime bounds script pointcut evaluation
	ScriptMaxExecutionTime time.Duration
	// Properties global values visible to script and expression pointcuts
	Properties map[string]interface{}
	// Pool runs asynchronous invocations, nil starts a goroutine per call
	Pool Pool
}

// Pool 协程池
type Pool interface {
	//Submit 往协程池提交一个任务
	//如果协程池满返回错误
	Submit(task func()) error
	//Release 释放
	Release()
}

// NewConfig creates a new Config and applies the options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger:                 DefaultLogger(),
		Predicate:              DefaultPredicate,
		ScriptMaxExecutionTime: time.Millisecond * 2000,
		Properties:             make(map[string]interface{}),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
