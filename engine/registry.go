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
	"reflect"
	"sort"
	"sync"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/utils/str"
)

// AdviceOption overrides what the registry would otherwise take from the aspect.
type AdviceOption func(*adviceOptions)

type adviceOptions struct {
	id       string
	order    *int
	pointCut types.PointCut
}

// WithId sets the id prefix of the advice expanded from one aspect.
func WithId(id string) AdviceOption {
	return func(o *adviceOptions) {
		o.id = id
	}
}

// WithOrder overrides aspect.Order().
func WithOrder(order int) AdviceOption {
	return func(o *adviceOptions) {
		o.order = &order
	}
}

// WithPointCut overrides the aspect's own PointCut.
func WithPointCut(pointCut types.PointCut) AdviceOption {
	return func(o *adviceOptions) {
		o.pointCut = pointCut
	}
}

// AdviceRegistry holds every registered advice, kept sorted by (Order, Seq).
// Registration is guarded by a lock; once configuration is done the registry
// is only read, and ApplicableAdvice is safe for concurrent use.
// AdviceRegistry 增强点注册器
type AdviceRegistry struct {
	predicate types.Predicate
	advice    types.AdviceList
	seq       uint64
	frozen    bool
	lock      sync.RWMutex
}

// NewAdviceRegistry nil predicate means types.DefaultPredicate.
func NewAdviceRegistry(predicate types.Predicate) *AdviceRegistry {
	if predicate == nil {
		predicate = types.DefaultPredicate
	}
	return &AdviceRegistry{predicate: predicate}
}

// Register expands each aspect into one advice per kind it implements.
func (r *AdviceRegistry) Register(aspects ...types.Aspect) error {
	for _, aspect := range aspects {
		if err := r.RegisterAspect(aspect); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAspect registers one aspect with optional overrides.
func (r *AdviceRegistry) RegisterAspect(aspect types.Aspect, opts ...AdviceOption) error {
	if aspect == nil {
		return fmt.Errorf("register aspect: nil aspect")
	}
	var o adviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	order := aspect.Order()
	if o.order != nil {
		order = *o.order
	}
	pointCut := o.pointCut
	if pointCut == nil {
		if pc, ok := aspect.(types.PointCutAspect); ok {
			pointCut = pc.PointCut
		}
	}
	prefix := o.id
	if prefix == "" {
		prefix = aspectName(aspect)
	}

	kinds := types.AdviceKinds
	if selector, ok := aspect.(types.KindsAspect); ok {
		kinds = selector.Kinds()
	}
	var expanded types.AdviceList
	for _, kind := range types.AdviceKinds {
		if !containsKind(kinds, kind) || !types.Implements(aspect, kind) {
			continue
		}
		expanded = append(expanded, types.Advice{
			Id:       prefix + "." + kind.String(),
			Kind:     kind,
			Order:    order,
			Aspect:   aspect,
			PointCut: pointCut,
		})
	}
	if len(expanded) == 0 {
		return fmt.Errorf("register aspect %s: implements no advice kind", prefix)
	}
	return r.RegisterAdvice(expanded...)
}

// RegisterAdvice registers prepared advice, in argument order.
func (r *AdviceRegistry) RegisterAdvice(advice ...types.Advice) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.frozen {
		return types.ErrRegistryFrozen
	}
	for _, item := range advice {
		if item.Aspect == nil || !types.Implements(item.Aspect, item.Kind) {
			return fmt.Errorf("register advice %q: aspect does not implement %s", item.Id, item.Kind)
		}
	}
	for _, item := range advice {
		r.seq++
		item.Seq = r.seq
		if item.Id == "" {
			item.Id = fmt.Sprintf("%s#%d.%s", aspectName(item.Aspect), item.Seq, item.Kind)
		}
		r.advice = append(r.advice, item)
	}
	sort.SliceStable(r.advice, func(i, j int) bool {
		return r.advice[i].Less(r.advice[j])
	})
	return nil
}

// Freeze rejects further registration.
func (r *AdviceRegistry) Freeze() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.frozen = true
}

func (r *AdviceRegistry) Frozen() bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.frozen
}

// All returns every registered advice in execution order.
func (r *AdviceRegistry) All() types.AdviceList {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append(types.AdviceList(nil), r.advice...)
}

func (r *AdviceRegistry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.advice)
}

// ApplicableAdvice returns the advice the predicate admits for inv, ascending
// by order with registration order breaking ties. An empty result is valid.
func (r *AdviceRegistry) ApplicableAdvice(inv *types.Invocation) types.AdviceList {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var out types.AdviceList
	for _, item := range r.advice {
		if r.predicate(item, inv) {
			out = append(out, item)
		}
	}
	return out
}

func containsKind(kinds []types.AdviceKind, kind types.AdviceKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func aspectName(aspect types.Aspect) string {
	if typed, ok := aspect.(types.TypedAspect); ok {
		return typed.Type()
	}
	t := reflect.TypeOf(aspect)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return str.ToLowerFirst(name)
	}
	return "aspect"
}
