/*
 * Copyright 2024 The RuleGo Authors.
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

// Package aspect provides the built-in aspects for method interception.
//
// Package aspect 提供内置切面。
//
// Available Built-in Aspects:
// 可用的内置切面：
//
//   - Logging: logs call begin, return, failure and end, using every advice kind
//     Logging：记录方法开始、返回、异常和结束日志
//
//   - Validation: rejects negative numeric arguments with an invalid-argument error
//     Validation：拒绝负数参数
//
//   - ConcurrencyLimiter: rejects calls beyond a concurrency limit
//     ConcurrencyLimiter：限制并发调用数
//
//   - Metrics: counts invocations, successes and failures
//     Metrics：统计调用次数、成功和失败次数
//
//   - RunSnapshotAspect: records a snapshot of every completed call
//     RunSnapshotAspect：记录每次调用的执行快照
//
// Aspect Execution Order:
// 切面执行顺序：
//
// Aspects are executed in order based on their Order() method:
// 切面根据其 Order() 方法按顺序执行：
//  1. RunSnapshotAspect (order: -100)
//  2. Logging (order: 0)
//  3. Validation (order: 1)
//  4. ConcurrencyLimiter (order: 10)
//  5. Metrics (order: 20)
//
// Within one advice kind lower orders run first, on the way in and on the way
// out. Discrete advice (before, afterReturning, afterThrowing, after) runs
// outside all around advice.
//
// Usage Examples:
// 使用示例：
//
//	e, err := engine.New(types.WithAspects(
//		aspect.NewLogging(nil),
//		&aspect.Validation{},
//	))
//
// Each aspect also has a Type() so it can be created from an aspect DSL:
//
//	{"aspects": [{"type": "logging"}, {"type": "validation", "order": 1}]}
package aspect

import (
	"github.com/rulego/calcaop/api/types"
)

// Registry holds the built-in aspect prototypes, collected by engine.Registry.
var Registry = &types.SafeAspectSlice{}

func init() {
	Registry.Add(&Logging{}, &Validation{}, &ConcurrencyLimiter{}, &Metrics{}, &RunSnapshotAspect{})
}

// parseKinds converts configured kind names, empty meaning all kinds.
func parseKinds(names []string) ([]types.AdviceKind, error) {
	if len(names) == 0 {
		return types.AdviceKinds, nil
	}
	kinds := make([]types.AdviceKind, 0, len(names))
	for _, name := range names {
		k, err := types.ParseAdviceKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
