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

package aspect

import (
	"github.com/robfig/cron/v3"
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/api/types/metrics"
)

// MetricsReporter logs a metrics snapshot on a cron schedule, e.g. "@every 1m".
type MetricsReporter struct {
	metrics *metrics.InvocationMetrics
	logger  types.Logger
	cron    *cron.Cron
}

func NewMetricsReporter(spec string, m *metrics.InvocationMetrics, logger types.Logger) (*MetricsReporter, error) {
	r := &MetricsReporter{
		metrics: m,
		logger:  types.NewLogger(logger),
		cron:    cron.New(),
	}
	if _, err := r.cron.AddFunc(spec, r.Report); err != nil {
		return nil, err
	}
	return r, nil
}

// Report logs one snapshot now.
func (r *MetricsReporter) Report() {
	s := r.metrics.Get()
	r.logger.Printf("invocations total=%d success=%d failed=%d invalidArgument=%d current=%d methods=%v",
		s.Total, s.Success, s.Failed, s.InvalidArgument, s.Current, s.Methods)
}

func (r *MetricsReporter) Start() {
	r.cron.Start()
}

// Stop waits for a running report to finish.
func (r *MetricsReporter) Stop() {
	<-r.cron.Stop().Done()
}
