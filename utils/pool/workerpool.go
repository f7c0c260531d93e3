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

// Package pool provides a bounded goroutine pool that reuses idle workers
// and retires them after an idle timeout.
package pool

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// DefaultMaxIdle is the idle timeout used when none is configured.
const DefaultMaxIdle = 10 * time.Second

var (
	// ErrPoolFull is returned by Submit when all workers are busy.
	ErrPoolFull = errors.New("worker pool: no idle workers")
	// ErrPoolStopped is returned by Submit after Stop.
	ErrPoolStopped = errors.New("worker pool: stopped")
)

// WorkerPool runs submitted tasks on at most MaxWorkers goroutines.
// WorkerPool 协程池
type WorkerPool struct {
	// MaxWorkers upper bound of concurrently running workers
	MaxWorkers int
	// MaxIdle how long an idle worker is kept, default DefaultMaxIdle
	MaxIdle time.Duration
	// PanicHandler receives panics raised by tasks, nil ignores them
	PanicHandler func(v interface{})

	lock    sync.Mutex
	workers int
	// idle is ordered by lastUse, oldest first
	idle    []*worker
	stopped bool
	stopCh  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

type worker struct {
	tasks   chan func()
	lastUse time.Time
}

// New creates and starts a pool.
func New(maxWorkers int, maxIdle time.Duration) *WorkerPool {
	wp := &WorkerPool{MaxWorkers: maxWorkers, MaxIdle: maxIdle}
	wp.Start()
	return wp
}

// Start launches the idle worker reaper. Calling it again has no effect.
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		wp.lock.Lock()
		wp.stopCh = make(chan struct{})
		stopCh := wp.stopCh
		wp.lock.Unlock()
		go wp.reap(stopCh)
	})
}

// Submit hands task to an idle worker or starts a new one.
func (wp *WorkerPool) Submit(task func()) error {
	wp.lock.Lock()
	if wp.stopped {
		wp.lock.Unlock()
		return ErrPoolStopped
	}
	var w *worker
	if n := len(wp.idle); n > 0 {
		w = wp.idle[n-1]
		wp.idle[n-1] = nil
		wp.idle = wp.idle[:n-1]
	} else if wp.workers < wp.MaxWorkers {
		wp.workers++
		w = &worker{tasks: make(chan func(), 1)}
		wp.wg.Add(1)
		go wp.run(w)
	}
	wp.lock.Unlock()

	if w == nil {
		return ErrPoolFull
	}
	w.tasks <- task
	return nil
}

// Workers returns the number of live workers.
func (wp *WorkerPool) Workers() int {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	return wp.workers
}

// Stop rejects new tasks and retires workers once their current task ends.
func (wp *WorkerPool) Stop() {
	wp.lock.Lock()
	if wp.stopped {
		wp.lock.Unlock()
		return
	}
	wp.stopped = true
	idle := wp.idle
	wp.idle = nil
	stopCh := wp.stopCh
	wp.lock.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	for _, w := range idle {
		close(w.tasks)
	}
}

// Release stops the pool.
func (wp *WorkerPool) Release() {
	wp.Stop()
}

// Wait blocks until every worker has exited. Call after Stop.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) maxIdle() time.Duration {
	if wp.MaxIdle <= 0 {
		return DefaultMaxIdle
	}
	return wp.MaxIdle
}

func (wp *WorkerPool) run(w *worker) {
	defer func() {
		wp.lock.Lock()
		wp.workers--
		wp.lock.Unlock()
		wp.wg.Done()
	}()
	for task := range w.tasks {
		wp.exec(task)
		if !wp.park(w) {
			return
		}
	}
}

func (wp *WorkerPool) exec(task func()) {
	defer func() {
		if e := recover(); e != nil && wp.PanicHandler != nil {
			wp.PanicHandler(e)
		}
	}()
	task()
}

// park returns w to the idle list, or false if the pool is stopping.
func (wp *WorkerPool) park(w *worker) bool {
	w.lastUse = time.Now()
	wp.lock.Lock()
	defer wp.lock.Unlock()
	if wp.stopped {
		return false
	}
	wp.idle = append(wp.idle, w)
	return true
}

func (wp *WorkerPool) reap(stopCh chan struct{}) {
	ticker := time.NewTicker(wp.maxIdle())
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			wp.expire(now)
		}
	}
}

// expire retires workers idle since before now-MaxIdle.
func (wp *WorkerPool) expire(now time.Time) {
	deadline := now.Add(-wp.maxIdle())
	wp.lock.Lock()
	n := sort.Search(len(wp.idle), func(i int) bool {
		return wp.idle[i].lastUse.After(deadline)
	})
	expired := append([]*worker(nil), wp.idle[:n]...)
	m := copy(wp.idle, wp.idle[n:])
	for i := m; i < len(wp.idle); i++ {
		wp.idle[i] = nil
	}
	wp.idle = wp.idle[:m]
	wp.lock.Unlock()

	for _, w := range expired {
		close(w.tasks)
	}
}
