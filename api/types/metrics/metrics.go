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

// Package metrics holds invocation counters maintained by the metrics aspect.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// InvocationMetrics 调用指标
type InvocationMetrics struct {
	Current         int64 // Number of invocations in flight
	Total           int64 // Total number of invocations
	Failed          int64 // Number of failed invocations
	Success         int64 // Number of successful invocations
	InvalidArgument int64 // Failed invocations rejected as invalid argument

	methods sync.Map // method name -> *int64
}

func NewInvocationMetrics() *InvocationMetrics {
	return &InvocationMetrics{}
}

func (m *InvocationMetrics) IncrementCurrent() {
	atomic.AddInt64(&m.Current, 1)
}

func (m *InvocationMetrics) DecrementCurrent() {
	atomic.AddInt64(&m.Current, -1)
}

func (m *InvocationMetrics) IncrementTotal() {
	atomic.AddInt64(&m.Total, 1)
}

func (m *InvocationMetrics) IncrementFailed() {
	atomic.AddInt64(&m.Failed, 1)
}

func (m *InvocationMetrics) IncrementSuccess() {
	atomic.AddInt64(&m.Success, 1)
}

func (m *InvocationMetrics) IncrementInvalidArgument() {
	atomic.AddInt64(&m.InvalidArgument, 1)
}

// IncrementMethod counts one call of the named method.
func (m *InvocationMetrics) IncrementMethod(method string) {
	counter, _ := m.methods.LoadOrStore(method, new(int64))
	atomic.AddInt64(counter.(*int64), 1)
}

// MethodCounts returns a snapshot of per-method call counts.
func (m *InvocationMetrics) MethodCounts() map[string]int64 {
	out := make(map[string]int64)
	m.methods.Range(func(key, value interface{}) bool {
		out[key.(string)] = atomic.LoadInt64(value.(*int64))
		return true
	})
	return out
}

// Methods returns the counted method names, sorted.
func (m *InvocationMetrics) Methods() []string {
	var names []string
	m.methods.Range(func(key, _ interface{}) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Current         int64            `json:"current"`
	Total           int64            `json:"total"`
	Failed          int64            `json:"failed"`
	Success         int64            `json:"success"`
	InvalidArgument int64            `json:"invalidArgument"`
	Methods         map[string]int64 `json:"methods"`
}

func (m *InvocationMetrics) Get() Snapshot {
	return Snapshot{
		Current:         atomic.LoadInt64(&m.Current),
		Total:           atomic.LoadInt64(&m.Total),
		Failed:          atomic.LoadInt64(&m.Failed),
		Success:         atomic.LoadInt64(&m.Success),
		InvalidArgument: atomic.LoadInt64(&m.InvalidArgument),
		Methods:         m.MethodCounts(),
	}
}

func (m *InvocationMetrics) Reset() {
	atomic.StoreInt64(&m.Current, 0)
	atomic.StoreInt64(&m.Total, 0)
	atomic.StoreInt64(&m.Failed, 0)
	atomic.StoreInt64(&m.Success, 0)
	atomic.StoreInt64(&m.InvalidArgument, 0)
	m.methods.Range(func(key, _ interface{}) bool {
		m.methods.Delete(key)
		return true
	})
}
