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

package types

import (
	"math"
	"time"

	"github.com/rulego/calcaop/utils/pool"
)

type Option func(*Config) error

func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithAspects appends aspects; registration order is the tie-breaker between equal orders.
func WithAspects(aspects ...Aspect) Option {
	return func(c *Config) error {
		c.Aspects = append(c.Aspects, aspects...)
		return nil
	}
}

func WithAdvice(advice ...Advice) Option {
	return func(c *Config) error {
		c.Advice = append(c.Advice, advice...)
		return nil
	}
}

func WithPredicate(predicate Predicate) Option {
	return func(c *Config) error {
		c.Predicate = predicate
		return nil
	}
}

func WithStyle(style Style) Option {
	return func(c *Config) error {
		c.Style = style
		return nil
	}
}

// WithPool sets the pool used by asynchronous invocations.
func WithPool(pool Pool) Option {
	return func(c *Config) error {
		c.Pool = pool
		return nil
	}
}

// WithDefaultPool starts an unbounded worker pool.
func WithDefaultPool() Option {
	return func(c *Config) error {
		c.Pool = pool.New(math.MaxInt32, 0)
		return nil
	}
}

func WithScriptMaxExecutionTime(scriptMaxExecutionTime time.Duration) Option {
	return func(c *Config) error {
		c.ScriptMaxExecutionTime = scriptMaxExecutionTime
		return nil
	}
}

func WithProperties(properties map[string]interface{}) Option {
	return func(c *Config) error {
		if c.Properties == nil {
			c.Properties = make(map[string]interface{}, len(properties))
		}
		for k, v := range properties {
			c.Properties[k] = v
		}
		return nil
	}
}
