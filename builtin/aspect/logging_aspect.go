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
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/pointcut"
	"github.com/rulego/calcaop/utils/maps"
)

var (
	_ types.BeforeAspect         = (*Logging)(nil)
	_ types.AfterAspect          = (*Logging)(nil)
	_ types.AfterReturningAspect = (*Logging)(nil)
	_ types.AfterThrowingAspect  = (*Logging)(nil)
	_ types.AroundAspect         = (*Logging)(nil)
	_ types.KindsAspect          = (*Logging)(nil)
	_ types.InitAspect           = (*Logging)(nil)
	_ types.LoggerAspect         = (*Logging)(nil)
)

// LoggingConfig 日志切面配置
type LoggingConfig struct {
	// Kinds advice kinds to contribute, empty means all five
	Kinds []string
}

// Logging logs every matched call. Used with all kinds, a call logs its
// begin line twice (before and around), which is what the combined style
// shows; select kinds to log once.
//
// Logging 日志切面，切入点：所有方法
type Logging struct {
	Config LoggingConfig
	Sink   EventSink
	kinds  []types.AdviceKind
}

// NewLogging with a nil sink logs through the engine logger once the engine
// registers it. A Logging without a sink emits nothing.
func NewLogging(sink EventSink, kinds ...types.AdviceKind) *Logging {
	return &Logging{Sink: sink, kinds: kinds}
}

func (a *Logging) Order() int {
	return 0
}

func (a *Logging) Type() string {
	return "logging"
}

func (a *Logging) New() types.Aspect {
	return &Logging{}
}

// Init binds the sink to the configured logger.
func (a *Logging) Init(config types.Config, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &a.Config); err != nil {
		return err
	}
	kinds, err := parseKinds(a.Config.Kinds)
	if err != nil {
		return err
	}
	a.kinds = kinds
	a.SetLogger(config.Logger)
	return nil
}

// SetLogger binds the sink to logger unless a sink is already set.
func (a *Logging) SetLogger(logger types.Logger) {
	if a.Sink == nil {
		a.Sink = LoggerSink{Logger: logger}
	}
}

// PointCut execution(* *.*(..))
func (a *Logging) PointCut(inv *types.Invocation) bool {
	return pointcut.Any()(inv)
}

func (a *Logging) Kinds() []types.AdviceKind {
	if len(a.kinds) == 0 {
		return types.AdviceKinds
	}
	return a.kinds
}

func (a *Logging) Before(inv *types.Invocation) error {
	a.emit(Event{Type: CallBegin, Kind: types.Before, Invocation: inv})
	return nil
}

func (a *Logging) After(inv *types.Invocation) {
	a.emit(Event{Type: CallEnded, Kind: types.After, Invocation: inv})
}

func (a *Logging) AfterReturning(inv *types.Invocation, result types.Value) error {
	a.emit(Event{Type: CallReturned, Kind: types.AfterReturning, Invocation: inv, Result: result})
	return nil
}

func (a *Logging) AfterThrowing(inv *types.Invocation, err error) {
	a.emit(Event{Type: CallFailed, Kind: types.AfterThrowing, Invocation: inv, Err: err})
}

// Around logs begin and end around proceed; a failure is logged and
// returned unchanged.
func (a *Logging) Around(inv *types.Invocation, proceed types.Proceed) (types.Value, error) {
	a.emit(Event{Type: CallBegin, Kind: types.Around, Invocation: inv})
	result, err := proceed()
	if err != nil {
		a.emit(Event{Type: CallFailed, Kind: types.Around, Invocation: inv, Err: err})
		return result, err
	}
	a.emit(Event{Type: CallReturned, Kind: types.Around, Invocation: inv, Result: result})
	return result, nil
}

func (a *Logging) emit(event Event) {
	if a.Sink != nil {
		a.Sink.OnEvent(event)
	}
}
