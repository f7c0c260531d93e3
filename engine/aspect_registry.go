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
	"github.com/rulego/calcaop/builtin/aspect"
)

// Registry is the default aspect type registry used by the aspect DSL.
var Registry = new(AspectRegistry)

func init() {
	for _, item := range aspect.Registry.Aspects() {
		_ = Registry.Register(item)
	}
}

// AspectRegistry maps aspect types to prototypes that create new instances.
// AspectRegistry 切面类型注册器
type AspectRegistry struct {
	aspects map[string]types.TypedAspect
	sync.RWMutex
}

func (r *AspectRegistry) Register(aspect types.TypedAspect) error {
	r.Lock()
	defer r.Unlock()
	if r.aspects == nil {
		r.aspects = make(map[string]types.TypedAspect)
	}
	if _, ok := r.aspects[aspect.Type()]; ok {
		return fmt.Errorf("the aspect already exists. aspectType=%s", aspect.Type())
	}
	r.aspects[aspect.Type()] = aspect
	return nil
}

func (r *AspectRegistry) Unregister(aspectType string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.aspects[aspectType]; !ok {
		return fmt.Errorf("%w: %s", types.ErrAspectNotFound, aspectType)
	}
	delete(r.aspects, aspectType)
	return nil
}

// NewAspect creates a fresh instance of aspectType.
func (r *AspectRegistry) NewAspect(aspectType string) (types.Aspect, error) {
	r.RLock()
	defer r.RUnlock()
	prototype, ok := r.aspects[aspectType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrAspectNotFound, aspectType)
	}
	return prototype.New(), nil
}

// Types returns the registered aspect types, sorted.
func (r *AspectRegistry) Types() []string {
	r.RLock()
	defer r.RUnlock()
	names := make([]string, 0, len(r.aspects))
	for name := range r.aspects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
