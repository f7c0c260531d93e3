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

package engine

import (
	"errors"
	"fmt"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/utils/runtime"
)

// frame is the per-call execution state. It is created by Chain.Execute,
// owned by the calling goroutine and dropped when the call returns.
type frame struct {
	inv    *types.Invocation
	logger types.Logger

	before         types.AdviceList
	around         types.AdviceList
	afterReturning types.AdviceList
	afterThrowing  types.AdviceList
	after          types.AdviceList

	// depth is the number of around advice currently entered
	depth int
	// maxDepth is the deepest nesting reached during the call
	maxDepth int
	// targetCalls counts target invocations, at most one per call
	targetCalls int
}

func newFrame(inv *types.Invocation, advice types.AdviceList, logger types.Logger) *frame {
	f := &frame{inv: inv, logger: logger}
	f.before, f.around, f.afterReturning, f.afterThrowing, f.after = advice.Split()
	return f
}

// run executes the discrete phases around the around-composition. After
// advice runs from a defer so it is reached on every exit path.
func (f *frame) run(target types.Target) (result types.Value, err error) {
	defer func() {
		if afterErr := f.runAfter(); afterErr != nil && err == nil {
			result, err = types.Null(), afterErr
		}
	}()

	if err = f.runBefore(); err != nil {
		f.runAfterThrowing(err)
		return types.Null(), err
	}

	result, err = f.proceed(0, target)()
	if err != nil {
		f.runAfterThrowing(err)
		return types.Null(), err
	}

	// a failing returning-advice fails the call without reaching afterThrowing
	if err = f.runAfterReturning(result); err != nil {
		return types.Null(), err
	}
	f.inv.SetResult(result)
	return result, nil
}

func (f *frame) runBefore() error {
	for _, advice := range f.before {
		aspect := advice.Aspect.(types.BeforeAspect)
		var err error
		if failure := f.guard(advice, func() {
			err = aspect.Before(f.inv)
		}); failure != nil {
			return failure
		}
		if err != nil {
			return adviceFailure(advice, err)
		}
	}
	return nil
}

func (f *frame) runAfterReturning(result types.Value) error {
	for _, advice := range f.afterReturning {
		aspect := advice.Aspect.(types.AfterReturningAspect)
		var err error
		if failure := f.guard(advice, func() {
			err = aspect.AfterReturning(f.inv, result)
		}); failure != nil {
			return failure
		}
		if err != nil {
			return adviceFailure(advice, err)
		}
	}
	return nil
}

// runAfterThrowing only observes; advice failures here are logged so the
// original failure is what the caller sees.
func (f *frame) runAfterThrowing(cause error) {
	for _, advice := range f.afterThrowing {
		aspect := advice.Aspect.(types.AfterThrowingAspect)
		if failure := f.guard(advice, func() {
			aspect.AfterThrowing(f.inv, cause)
		}); failure != nil {
			f.logger.Printf("%s: %s", f.inv, failure.Error())
		}
	}
}

// runAfter runs every after advice even if one of them fails, and returns
// the first failure.
func (f *frame) runAfter() error {
	var first error
	for _, advice := range f.after {
		aspect := advice.Aspect.(types.AfterAspect)
		if failure := f.guard(advice, func() {
			aspect.After(f.inv)
		}); failure != nil {
			f.logger.Printf("%s: %s", f.inv, failure.Error())
			if first == nil {
				first = failure
			}
		}
	}
	return first
}

// proceed returns the continuation for around advice at index; past the last
// around advice it is the target call itself.
func (f *frame) proceed(index int, target types.Target) types.Proceed {
	if index >= len(f.around) {
		return func() (types.Value, error) {
			return f.callTarget(target)
		}
	}
	advice := f.around[index]
	aspect := advice.Aspect.(types.AroundAspect)
	next := f.proceed(index+1, target)
	return func() (result types.Value, err error) {
		called := false
		// failure of the inner stage, passed through unchanged when re-raised
		var inner error
		guarded := func() (types.Value, error) {
			if called {
				return types.Null(), &types.AdviceError{AdviceId: advice.Id, Kind: advice.Kind, Cause: types.ErrProceedTwice}
			}
			called = true
			var value types.Value
			value, inner = next()
			return value, inner
		}
		f.enter()
		defer f.leave()
		if failure := f.guard(advice, func() {
			result, err = aspect.Around(f.inv, guarded)
		}); failure != nil {
			return types.Null(), failure
		}
		if err != nil {
			if inner != nil && errors.Is(err, inner) {
				return types.Null(), err
			}
			return types.Null(), adviceFailure(advice, err)
		}
		return result, nil
	}
}

func (f *frame) callTarget(target types.Target) (result types.Value, err error) {
	defer func() {
		if e := recover(); e != nil {
			result, err = types.Null(), &types.PanicError{Value: e, Stack: runtime.Stack()}
		}
	}()
	f.targetCalls++
	result, err = target(f.inv.Args())
	if err != nil {
		return types.Null(), err
	}
	return result, nil
}

// adviceFailure attributes an error raised by advice code to that advice.
// Invalid-argument rejections and errors already attributed to an advice
// keep their identity.
func adviceFailure(advice types.Advice, err error) error {
	if types.Classify(err) != types.TargetFailure {
		return err
	}
	return &types.AdviceError{AdviceId: advice.Id, Kind: advice.Kind, Cause: err}
}

// guard runs fn and converts a panic into an AdviceError.
func (f *frame) guard(advice types.Advice, fn func()) (failure error) {
	defer func() {
		if e := recover(); e != nil {
			cause, ok := e.(error)
			if !ok {
				cause = fmt.Errorf("%v", e)
			}
			failure = &types.AdviceError{AdviceId: advice.Id, Kind: advice.Kind, Cause: cause, Stack: runtime.Stack()}
		}
	}()
	fn()
	return nil
}

func (f *frame) enter() {
	f.depth++
	if f.depth > f.maxDepth {
		f.maxDepth = f.depth
	}
}

func (f *frame) leave() {
	f.depth--
}
