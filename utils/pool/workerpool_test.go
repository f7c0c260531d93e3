/*
 * Copyright 2023 The RuleGo Authors.
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

package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	wp := New(200000, 0)
	defer wp.Stop()

	var n int32
	var wg sync.WaitGroup
	wg.Add(10000)
	for i := 0; i < 10000; i++ {
		require.NoError(t, wp.Submit(func() {
			atomic.AddInt32(&n, 1)
			wg.Done()
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(10000), atomic.LoadInt32(&n))

	wp.Release()
	assert.Equal(t, ErrPoolStopped, wp.Submit(func() {}))
	wp.Wait()
	assert.Equal(t, 0, wp.Workers())
}

func TestWorkerPoolFull(t *testing.T) {
	wp := New(1, time.Second)
	defer wp.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, wp.Submit(func() {
		close(started)
		<-block
	}))
	<-started
	assert.Equal(t, ErrPoolFull, wp.Submit(func() {}))
	close(block)

	assert.Eventually(t, func() bool {
		return wp.Submit(func() {}) == nil
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerPoolExpireIdle(t *testing.T) {
	wp := &WorkerPool{MaxWorkers: 4, MaxIdle: 20 * time.Millisecond}
	wp.Start()
	wp.Start()
	defer wp.Stop()

	done := make(chan struct{})
	require.NoError(t, wp.Submit(func() { close(done) }))
	<-done
	assert.Eventually(t, func() bool {
		return wp.Workers() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerPoolPanicHandler(t *testing.T) {
	recovered := make(chan interface{}, 1)
	wp := &WorkerPool{MaxWorkers: 1, PanicHandler: func(v interface{}) { recovered <- v }}
	wp.Start()
	defer wp.Stop()

	require.NoError(t, wp.Submit(func() { panic("boom") }))
	assert.Equal(t, "boom", <-recovered)

	done := make(chan struct{})
	assert.Eventually(t, func() bool {
		return wp.Submit(func() { close(done) }) == nil
	}, time.Second, 10*time.Millisecond)
	<-done
}
