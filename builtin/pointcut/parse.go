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

package pointcut

import (
	"fmt"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/utils/maps"
)

// Definition types
const (
	TypeAny     = "any"
	TypeNone    = "none"
	TypeMethods = "methods"
	TypeTargets = "targets"
	TypeArity   = "arity"
	TypeArgs    = "args"
	TypeExpr    = "expr"
	TypeScript  = "script"
	TypeAnd     = "and"
	TypeOr      = "or"
	TypeNot     = "not"
)

// Definition is the declarative form of a pointcut used in aspect DSL files.
//
//	{"type": "args", "kinds": ["number", "number"]}
//	{"type": "and", "items": [{"type": "methods", "names": ["div"]}, {"type": "arity", "arity": 2}]}
type Definition struct {
	Type   string
	Names  []string
	Arity  int
	Kinds  []string
	Expr   string
	Script string
	Items  []types.Configuration
}

// Parse builds a pointcut from its declarative definition. An empty type means any.
func Parse(config types.Config, configuration types.Configuration) (types.PointCut, error) {
	var def Definition
	if err := maps.Map2Struct(configuration, &def); err != nil {
		return nil, fmt.Errorf("decode pointcut: %w", err)
	}
	return def.Build(config)
}

// Build compiles the definition.
func (def Definition) Build(config types.Config) (types.PointCut, error) {
	switch def.Type {
	case TypeAny, "":
		return Any(), nil
	case TypeNone:
		return None(), nil
	case TypeMethods:
		return Methods(def.Names...), nil
	case TypeTargets:
		return Targets(def.Names...), nil
	case TypeArity:
		return Arity(def.Arity), nil
	case TypeArgs:
		kinds := make([]types.ValueKind, 0, len(def.Kinds))
		for _, name := range def.Kinds {
			k, err := types.ParseValueKind(name)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
		return Args(kinds...), nil
	case TypeExpr:
		return Expr(def.Expr)
	case TypeScript:
		return Script(config, def.Script)
	case TypeAnd, TypeOr, TypeNot:
		items := make([]types.PointCut, 0, len(def.Items))
		for _, item := range def.Items {
			pc, err := Parse(config, item)
			if err != nil {
				return nil, err
			}
			items = append(items, pc)
		}
		switch def.Type {
		case TypeAnd:
			return And(items...), nil
		case TypeOr:
			return Or(items...), nil
		default:
			if len(items) != 1 {
				return nil, fmt.Errorf("not pointcut needs exactly one item, got %d", len(items))
			}
			return Not(items[0]), nil
		}
	default:
		return nil, fmt.Errorf("unknown pointcut type %q", def.Type)
	}
}
