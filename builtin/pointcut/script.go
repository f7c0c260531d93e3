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
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/utils/js"
)

// ScriptFuncName is the function a script pointcut must define.
const ScriptFuncName = "pointCut"

// Script compiles JavaScript defining `function pointCut(method, args, target)`.
// Errors and non-boolean results count as no match and are logged.
//
//	function pointCut(method, args, target) {
//	    return args.every(function (a) { return typeof a === "number"; });
//	}
func Script(config types.Config, source string) (types.PointCut, error) {
	engine, err := js.NewGojaJsEngine(config, source, nil)
	if err != nil {
		return nil, err
	}
	logger := types.NewLogger(config.Logger)
	return func(inv *types.Invocation) bool {
		out, err := engine.Execute(ScriptFuncName, inv.Method, inv.ArgsInterface(), inv.TargetId)
		if err != nil {
			logger.Printf("pointcut script error in %s: %s", inv, err.Error())
			return false
		}
		result, ok := out.(bool)
		return ok && result
	}, nil
}
