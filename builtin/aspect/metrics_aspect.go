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

package aspect

import (
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/api/types/metrics"
)

var (
	_ types.AroundAspect        = (*Metrics)(nil)
	_ types.AfterThrowingAspect = (*Metrics)(nil)
	_ types.AfterAspect         = (*Metrics)(nil)
)

// Metrics counts invocations. Totals and per-method counts are taken in after
// advice, which runs for every call; Current counts calls inside the around
// phase, so it stays zero under the discrete style.
//
// Metrics 调用指标统计切面
type Metrics struct {
	metrics *metrics.InvocationMetrics
}

// NewMetrics nil m creates fresh counters.
func NewMetrics(m *metrics.InvocationMetrics) *Metrics {
	if m == nil {
		m = metrics.NewInvocationMetrics()
	}
	return &Metrics{metrics: m}
}

func (a *Metrics) Order() int {
	return 20
}

func (a *Metrics) Type() string {
	return "metrics"
}

func (a *Metrics) New() types.Aspect {
	return NewMetrics(nil)
}

func (a *Metrics) Around(inv *types.Invocation, proceed types.Proceed) (types.Value, error) {
	a.metrics.IncrementCurrent()
	defer a.metrics.DecrementCurrent()
	return proceed()
}

func (a *Metrics) AfterThrowing(inv *types.Invocation, err error) {
	if types.Classify(err) == types.InvalidArgument {
		a.metrics.IncrementInvalidArgument()
	}
}

func (a *Metrics) After(inv *types.Invocation) {
	a.metrics.IncrementTotal()
	a.metrics.IncrementMethod(inv.Method)
	if _, ok := inv.Result(); ok {
		a.metrics.IncrementSuccess()
	} else {
		a.metrics.IncrementFailed()
	}
}

func (a *Metrics) GetMetrics() *metrics.InvocationMetrics {
	return a.metrics
}

// MetricsOf finds the first metrics aspect among registered advice.
func MetricsOf(advice types.AdviceList) (*Metrics, bool) {
	for _, item := range advice {
		if m, ok := item.Aspect.(*Metrics); ok {
			return m, true
		}
	}
	return nil, false
}
