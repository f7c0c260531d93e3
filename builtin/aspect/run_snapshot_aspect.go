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
	"sync"
	"time"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/utils/json"
	"github.com/rulego/calcaop/utils/maps"
)

var (
	_ types.BeforeAspect        = (*RunSnapshotAspect)(nil)
	_ types.AfterThrowingAspect = (*RunSnapshotAspect)(nil)
	_ types.AfterAspect         = (*RunSnapshotAspect)(nil)
	_ types.PointCutAspect      = (*RunSnapshotAspect)(nil)
	_ types.InitAspect          = (*RunSnapshotAspect)(nil)
)

// RunSnapshot 一次调用的执行快照
type RunSnapshot struct {
	Id       string        `json:"id"`
	TargetId string        `json:"target,omitempty"`
	Method   string        `json:"method"`
	Args     []interface{} `json:"args"`
	// Result is set when the call succeeded
	Result interface{} `json:"result,omitempty"`
	// Err failure message, Failure its kind
	Err     string `json:"err,omitempty"`
	Failure string `json:"failure,omitempty"`
	StartTs int64  `json:"startTs"`
	EndTs   int64  `json:"endTs"`
}

// RunSnapshotConfig 执行快照切面配置
type RunSnapshotConfig struct {
	// Log writes every snapshot as JSON to the configured logger
	Log bool
}

// RunSnapshotAspect records one RunSnapshot per call and hands it to the
// completion callback once after advice has run. It only applies while a
// callback is set, so set it before the first call.
//
// RunSnapshotAspect 执行快照切面
type RunSnapshotAspect struct {
	Config      RunSnapshotConfig
	onCompleted func(snapshot RunSnapshot)
	// running snapshots keyed by invocation id
	running sync.Map
}

func NewRunSnapshotAspect(onCompleted func(snapshot RunSnapshot)) *RunSnapshotAspect {
	return &RunSnapshotAspect{onCompleted: onCompleted}
}

func (aspect *RunSnapshotAspect) Order() int {
	return -100
}

func (aspect *RunSnapshotAspect) Type() string {
	return "runSnapshot"
}

func (aspect *RunSnapshotAspect) New() types.Aspect {
	return &RunSnapshotAspect{}
}

func (aspect *RunSnapshotAspect) Init(config types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &aspect.Config); err != nil {
		return err
	}
	if aspect.Config.Log && aspect.onCompleted == nil {
		logger := types.NewLogger(config.Logger)
		aspect.onCompleted = func(snapshot RunSnapshot) {
			if data, err := json.Marshal(snapshot); err == nil {
				logger.Printf("run snapshot %s", data)
			}
		}
	}
	return nil
}

// SetOnCompleted 设置调用完成回调
func (aspect *RunSnapshotAspect) SetOnCompleted(onCompleted func(snapshot RunSnapshot)) {
	aspect.onCompleted = onCompleted
}

func (aspect *RunSnapshotAspect) PointCut(inv *types.Invocation) bool {
	return aspect.onCompleted != nil
}

func (aspect *RunSnapshotAspect) Before(inv *types.Invocation) error {
	aspect.running.Store(inv.Id, aspect.start(inv))
	return nil
}

func (aspect *RunSnapshotAspect) AfterThrowing(inv *types.Invocation, err error) {
	snapshot := aspect.snapshot(inv)
	snapshot.Err = err.Error()
	snapshot.Failure = types.Classify(err).String()
}

func (aspect *RunSnapshotAspect) After(inv *types.Invocation) {
	snapshot := aspect.snapshot(inv)
	aspect.running.Delete(inv.Id)
	snapshot.EndTs = time.Now().UnixMilli()
	if result, ok := inv.Result(); ok {
		snapshot.Result = result.Interface()
	}
	if aspect.onCompleted != nil {
		aspect.onCompleted(*snapshot)
	}
}

// snapshot returns the running snapshot, starting one when an earlier
// before advice failed and Before never ran.
func (aspect *RunSnapshotAspect) snapshot(inv *types.Invocation) *RunSnapshot {
	v, _ := aspect.running.LoadOrStore(inv.Id, aspect.start(inv))
	return v.(*RunSnapshot)
}

func (aspect *RunSnapshotAspect) start(inv *types.Invocation) *RunSnapshot {
	return &RunSnapshot{
		Id:       inv.Id,
		TargetId: inv.TargetId,
		Method:   inv.Method,
		Args:     inv.ArgsInterface(),
		StartTs:  time.Now().UnixMilli(),
	}
}
