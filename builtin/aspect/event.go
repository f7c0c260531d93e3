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
)

// EventType 日志事件类型
type EventType int

const (
	// CallBegin method name and arguments, before the call
	CallBegin EventType = iota
	// CallReturned method name and result, after success
	CallReturned
	// CallFailed method name, arguments and failure
	CallFailed
	// CallEnded unconditional end notification
	CallEnded
)

func (t EventType) String() string {
	switch t {
	case CallBegin:
		return "begin"
	case CallReturned:
		return "returned"
	case CallFailed:
		return "failed"
	default:
		return "ended"
	}
}

// Event is one observation emitted by the logging aspect.
type Event struct {
	Type       EventType
	Kind       types.AdviceKind
	Invocation *types.Invocation
	Result     types.Value
	Err        error
}

// EventSink receives logging events.
type EventSink interface {
	OnEvent(event Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(event Event)

func (f EventSinkFunc) OnEvent(event Event) {
	f(event)
}

// LoggerSink formats events as log lines:
//
//	The method add() begins with [1.0, 2.0]
//	The method add() ends with 3.0
//	Illegal argument [-5.0, 2.0] in add()
//	The method add() ends
type LoggerSink struct {
	Logger types.Logger
}

func (s LoggerSink) OnEvent(event Event) {
	logger := types.NewLogger(s.Logger)
	inv := event.Invocation
	switch event.Type {
	case CallBegin:
		logger.Printf("The method %s() begins with %s", inv.Method, inv.ArgsString())
	case CallReturned:
		logger.Printf("The method %s() ends with %s", inv.Method, event.Result)
	case CallFailed:
		if types.Classify(event.Err) == types.InvalidArgument {
			logger.Printf("Illegal argument %s in %s()", inv.ArgsString(), inv.Method)
		} else {
			logger.Printf("The method %s() failed with %s: %v", inv.Method, inv.ArgsString(), event.Err)
		}
	case CallEnded:
		logger.Printf("The method %s() ends", inv.Method)
	}
}

// MultiSink fans events out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) OnEvent(event Event) {
	for _, sink := range m {
		sink.OnEvent(event)
	}
}
