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

// AspectChain 切面配置文件定义
//
//	{
//	  "style": "combined",
//	  "aspects": [
//	    {"type": "validation", "order": 1, "pointcut": {"type": "args", "kinds": ["number", "number"]}},
//	    {"type": "logging", "order": 0, "configuration": {"kinds": ["before", "after"]}}
//	  ]
//	}
type AspectChain struct {
	// Style combined/discrete/around，默认 combined
	Style string `json:"style,omitempty"`
	// Aspects 切面列表，数组顺序即注册顺序
	Aspects []AspectDef `json:"aspects"`
}

// AspectDef 单个切面定义
type AspectDef struct {
	// Id optional, defaults to the aspect type
	Id string `json:"id,omitempty"`
	// Type 切面类型，需要在切面注册器中注册
	Type string `json:"type"`
	// Order overrides the aspect's own Order when set
	Order *int `json:"order,omitempty"`
	// PointCut declarative pointcut, overrides the aspect's own pointcut when set
	PointCut Configuration `json:"pointcut,omitempty"`
	// Configuration 切面配置，通过 mapstructure 解码到切面的 Config 字段
	Configuration Configuration `json:"configuration,omitempty"`
	// Disabled 禁用该切面
	Disabled bool `json:"disabled,omitempty"`
}
