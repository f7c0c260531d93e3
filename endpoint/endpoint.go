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

// Package endpoint holds the request and reply messages shared by the
// outer surfaces (rest, websocket, mqtt) and the call they all make.
package endpoint

import (
	"fmt"
	"strconv"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/engine"
	"github.com/rulego/calcaop/utils/str"
)

// Request one call on a proxied target
type Request struct {
	// Id optional invocation id; a uuid is generated when empty
	Id     string        `json:"id,omitempty"`
	Target string        `json:"target"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
}

// Reply outcome of a Request. Exactly one of Result or Error is meaningful.
type Reply struct {
	Id     string        `json:"id"`
	Target string        `json:"target"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
	Result interface{}   `json:"result"`
	Error  string        `json:"error,omitempty"`
	Kind   string        `json:"kind,omitempty"`
	err    error
}

// Failed reports whether the call raised.
func (r Reply) Failed() bool {
	return r.Error != ""
}

// Err returns the failure as raised by the chain, nil on success or when the
// reply was decoded from the wire.
func (r Reply) Err() error {
	return r.err
}

// Invoke runs req through the engine and always returns a Reply. Unknown
// targets and methods, and arguments types.ValueOf rejects, are reported as
// failures without running any advice.
func Invoke(e *engine.Engine, req Request) Reply {
	reply := Reply{Id: req.Id, Target: req.Target, Method: req.Method, Args: req.Args}
	args, err := types.Values(req.Args...)
	if err != nil {
		return reply.fail(fmt.Errorf("%w: %w", types.ErrInvalidArgument, err))
	}
	return Execute(e, req.Target, req.Method, req.Id, args...)
}

// Execute is Invoke for already converted arguments.
func Execute(e *engine.Engine, targetId, method, id string, args ...types.Value) Reply {
	var inv *types.Invocation
	if id == "" {
		inv = types.NewInvocation(targetId, method, args...)
	} else {
		inv = types.NewInvocationWithId(id, targetId, method, args...)
	}
	reply := Reply{Id: inv.Id, Target: targetId, Method: method, Args: inv.ArgsInterface()}
	proxy, ok := e.Proxy(targetId)
	if !ok {
		return reply.fail(fmt.Errorf("%w: %s", types.ErrTargetNotFound, targetId))
	}
	result, err := proxy.Execute(inv)
	if err != nil {
		return reply.fail(err)
	}
	reply.Result = result.Interface()
	return reply
}

func (r Reply) fail(err error) Reply {
	r.Result = nil
	r.err = err
	r.Error = err.Error()
	r.Kind = types.Classify(err).String()
	return r
}

// ParseArgs splits a comma separated list; numbers and booleans are typed,
// anything else is a string.
func ParseArgs(raw string) []types.Value {
	parts := str.SplitTrim(raw, ",")
	if len(parts) == 0 {
		return nil
	}
	args := make([]types.Value, 0, len(parts))
	for _, part := range parts {
		if f, err := strconv.ParseFloat(part, 64); err == nil {
			args = append(args, types.Number(f))
		} else if b, err := strconv.ParseBool(part); err == nil {
			args = append(args, types.Bool(b))
		} else {
			args = append(args, types.String(part))
		}
	}
	return args
}
