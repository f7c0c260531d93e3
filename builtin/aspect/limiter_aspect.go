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
	"errors"
	"sync/atomic"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/utils/maps"
)

var (
	_ types.AroundAspect = (*ConcurrencyLimiter)(nil)
	_ types.InitAspect   = (*ConcurrencyLimiter)(nil)
)

// ErrConcurrencyLimitReached is the cause of the AdviceError returned when
// the limiter rejects a call.
var ErrConcurrencyLimitReached = errors.New("concurrency limit reached")

// ConcurrencyLimiter rejects calls while Max calls are already inside it.
// ConcurrencyLimiter 并发限制切面
type ConcurrencyLimiter struct {
	Max          int64
	currentCount int64
}

func NewConcurrencyLimiter(max int) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{Max: int64(max)}
}

func (a *ConcurrencyLimiter) Order() int {
	return 10
}

func (a *ConcurrencyLimiter) Type() string {
	return "limiter"
}

func (a *ConcurrencyLimiter) New() types.Aspect {
	return &ConcurrencyLimiter{Max: a.Max}
}

func (a *ConcurrencyLimiter) Init(config types.Config, configuration types.Configuration) error {
	return maps.Map2Struct(configuration, a)
}

func (a *ConcurrencyLimiter) Around(inv *types.Invocation, proceed types.Proceed) (types.Value, error) {
	if !a.acquire() {
		return types.Null(), &types.AdviceError{AdviceId: a.Type(), Kind: types.Around, Cause: ErrConcurrencyLimitReached}
	}
	defer atomic.AddInt64(&a.currentCount, -1)
	return proceed()
}

func (a *ConcurrencyLimiter) acquire() bool {
	for {
		current := atomic.LoadInt64(&a.currentCount)
		if a.Max > 0 && current >= a.Max {
			return false
		}
		if atomic.CompareAndSwapInt64(&a.currentCount, current, current+1) {
			return true
		}
	}
}

// Current number of calls inside the limiter.
func (a *ConcurrencyLimiter) Current() int64 {
	return atomic.LoadInt64(&a.currentCount)
}
