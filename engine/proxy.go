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
	"sort"
	"sync"

	"github.com/rulego/calcaop/api/types"
)

// Proxy exposes the named methods of one target through the engine's chain.
// Proxy 目标对象代理
type Proxy struct {
	TargetId string
	engine   *Engine
	methods  map[string]types.Target
	lock     sync.RWMutex
}

func newProxy(engine *Engine, targetId string) *Proxy {
	return &Proxy{
		TargetId: targetId,
		engine:   engine,
		methods:  make(map[string]types.Target),
	}
}

// Bind registers method; binding the same name again replaces it.
func (p *Proxy) Bind(method string, target types.Target) *Proxy {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.methods[method] = target
	return p
}

// Methods returns the bound method names, sorted.
func (p *Proxy) Methods() []string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	names := make([]string, 0, len(p.methods))
	for name := range p.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Proxy) target(method string) (types.Target, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	target, ok := p.methods[method]
	return target, ok
}

// Invoke runs method through the chain. Unknown methods fail with
// ErrMethodNotFound without running any advice.
func (p *Proxy) Invoke(method string, args ...types.Value) (types.Value, error) {
	return p.Execute(types.NewInvocation(p.TargetId, method, args...))
}

// Execute runs a prepared invocation; its TargetId must be the proxy's.
func (p *Proxy) Execute(inv *types.Invocation) (types.Value, error) {
	target, ok := p.target(inv.Method)
	if !ok || inv.TargetId != p.TargetId {
		return types.Null(), fmt.Errorf("%w: %s.%s", types.ErrMethodNotFound, inv.TargetId, inv.Method)
	}
	return p.engine.Execute(inv, target)
}

// InvokeAsync runs method on the engine's pool. An unknown method fails
// immediately.
func (p *Proxy) InvokeAsync(method string, callback func(types.Value, error), args ...types.Value) error {
	target, ok := p.target(method)
	if !ok {
		return fmt.Errorf("%w: %s.%s", types.ErrMethodNotFound, p.TargetId, method)
	}
	return p.engine.Go(types.NewInvocation(p.TargetId, method, args...), target, callback)
}

// Call is Invoke with plain Go arguments converted by types.ValueOf.
func (p *Proxy) Call(method string, args ...interface{}) (types.Value, error) {
	values, err := types.Values(args...)
	if err != nil {
		return types.Null(), err
	}
	return p.Invoke(method, values...)
}
