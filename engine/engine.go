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

// Package engine runs method invocations through ordered advice.
//
// An Engine owns an AdviceRegistry, filled once at startup from aspects,
// function-backed advice or an aspect DSL, and a Chain that executes calls
// through the advice applicable to each invocation. Proxies bind named
// methods of a target so callers invoke them by name.
//
//	e, _ := engine.New(types.WithAspects(&aspect.Logging{}, &aspect.Validation{}))
//	calc := e.NewProxy("arithmeticCalculator").Bind("add", add)
//	result, err := calc.Call("add", 1, 2)
//
// Package engine 拦截引擎
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rulego/calcaop/api/types"
)

// Engine 拦截引擎
type Engine struct {
	config   types.Config
	registry *AdviceRegistry
	chain    *Chain
	proxies  map[string]*Proxy
	lock     sync.RWMutex
}

// New creates an engine from options and registers the configured aspects,
// then the configured function-backed advice.
func New(opts ...types.Option) (*Engine, error) {
	config := types.NewConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	return NewWithConfig(config)
}

func NewWithConfig(config types.Config) (*Engine, error) {
	config.Logger = types.NewLogger(config.Logger)
	if config.Predicate == nil {
		config.Predicate = types.DefaultPredicate
	}
	for _, aspect := range config.Aspects {
		if loggerAspect, ok := aspect.(types.LoggerAspect); ok {
			loggerAspect.SetLogger(config.Logger)
		}
	}
	registry := NewAdviceRegistry(config.Predicate)
	if err := registry.Register(config.Aspects...); err != nil {
		return nil, err
	}
	if err := registry.RegisterAdvice(config.Advice...); err != nil {
		return nil, err
	}
	return &Engine{
		config:   config,
		registry: registry,
		chain:    NewChain(registry, config.Style, config.Logger),
		proxies:  make(map[string]*Proxy),
	}, nil
}

func (e *Engine) Config() types.Config {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.config
}

func (e *Engine) Registry() *AdviceRegistry {
	return e.registry
}

func (e *Engine) Chain() *Chain {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.chain
}

// SetStyle switches the execution style. Meant for configuration time.
func (e *Engine) SetStyle(style types.Style) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.config.Style = style
	e.chain = NewChain(e.registry, style, e.config.Logger)
}

// Freeze stops further advice registration.
func (e *Engine) Freeze() {
	e.registry.Freeze()
}

// Execute runs one invocation against target.
func (e *Engine) Execute(inv *types.Invocation, target types.Target) (types.Value, error) {
	return e.Chain().Execute(inv, target)
}

// Invoke builds the invocation and executes it.
func (e *Engine) Invoke(targetId, method string, target types.Target, args ...types.Value) (types.Value, error) {
	return e.Execute(types.NewInvocation(targetId, method, args...), target)
}

// Go executes inv asynchronously and hands the outcome to callback. It uses
// the configured pool, or a new goroutine when none is set; the pool's
// rejection error is returned as is.
func (e *Engine) Go(inv *types.Invocation, target types.Target, callback func(types.Value, error)) error {
	task := func() {
		result, err := e.Execute(inv, target)
		if callback != nil {
			callback(result, err)
		}
	}
	if pool := e.Config().Pool; pool != nil {
		return pool.Submit(task)
	}
	go task()
	return nil
}

// NewProxy returns the proxy for targetId, creating it on first use.
func (e *Engine) NewProxy(targetId string) *Proxy {
	e.lock.Lock()
	defer e.lock.Unlock()
	if p, ok := e.proxies[targetId]; ok {
		return p
	}
	p := newProxy(e, targetId)
	e.proxies[targetId] = p
	return p
}

func (e *Engine) Proxy(targetId string) (*Proxy, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	p, ok := e.proxies[targetId]
	return p, ok
}

// Targets returns the ids of all proxies, sorted.
func (e *Engine) Targets() []string {
	e.lock.RLock()
	defer e.lock.RUnlock()
	ids := make([]string, 0, len(e.proxies))
	for id := range e.proxies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Call invokes method on the proxy bound to targetId.
func (e *Engine) Call(targetId, method string, args ...types.Value) (types.Value, error) {
	p, ok := e.Proxy(targetId)
	if !ok {
		return types.Null(), fmt.Errorf("%w: %s", types.ErrTargetNotFound, targetId)
	}
	return p.Invoke(method, args...)
}
