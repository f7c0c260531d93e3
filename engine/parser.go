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
	"github.com/rulego/calcaop/builtin/pointcut"
	"github.com/rulego/calcaop/utils/json"
)

// Parser decodes an aspect DSL document.
type Parser interface {
	DecodeAspectChain(dsl []byte) (types.AspectChain, error)
}

// JsonParser Json
type JsonParser struct {
}

func (p *JsonParser) DecodeAspectChain(dsl []byte) (types.AspectChain, error) {
	var def types.AspectChain
	if err := json.UnmarshalStrict(dsl, &def); err != nil {
		return def, fmt.Errorf("decode aspect chain: %w", err)
	}
	return def, nil
}

// DefaultParser is used by LoadDSL and NewFromDSL.
var DefaultParser Parser = &JsonParser{}

// NewFromDSL creates an engine and loads the aspect DSL into it.
func NewFromDSL(dsl []byte, opts ...types.Option) (*Engine, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err = e.LoadDSL(dsl); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) LoadDSL(dsl []byte) error {
	def, err := DefaultParser.DecodeAspectChain(dsl)
	if err != nil {
		return err
	}
	return e.Load(def)
}

// Load registers the aspects of def in document order, instantiated from
// Registry. Disabled aspects are skipped.
func (e *Engine) Load(def types.AspectChain) error {
	if def.Style != "" {
		style, ok := types.ParseStyle(def.Style)
		if !ok {
			return fmt.Errorf("unknown style %q", def.Style)
		}
		e.SetStyle(style)
	}
	config := e.Config()
	for i, item := range def.Aspects {
		if item.Disabled {
			continue
		}
		aspect, err := Registry.NewAspect(item.Type)
		if err != nil {
			return fmt.Errorf("aspects[%d]: %w", i, err)
		}
		if initAspect, ok := aspect.(types.InitAspect); ok {
			if err = initAspect.Init(config, item.Configuration); err != nil {
				return fmt.Errorf("aspects[%d] init %s: %w", i, item.Type, err)
			}
		}
		var opts []AdviceOption
		if item.Id != "" {
			opts = append(opts, WithId(item.Id))
		}
		if item.Order != nil {
			opts = append(opts, WithOrder(*item.Order))
		}
		if len(item.PointCut) > 0 {
			pc, err := pointcut.Parse(config, item.PointCut)
			if err != nil {
				return fmt.Errorf("aspects[%d] pointcut: %w", i, err)
			}
			opts = append(opts, WithPointCut(pc))
		}
		if err = e.registry.RegisterAspect(aspect, opts...); err != nil {
			return fmt.Errorf("aspects[%d]: %w", i, err)
		}
	}
	return nil
}
