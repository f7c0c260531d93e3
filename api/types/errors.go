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
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every InvalidArgumentError via errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrProceedTwice is the cause of the AdviceError an around advice gets
	// when it calls proceed again.
	ErrProceedTwice = errors.New("proceed called more than once")
	// ErrMethodNotFound is returned by a proxy for an unbound method.
	ErrMethodNotFound = errors.New("method not found")
	// ErrTargetNotFound is returned when no proxy is bound for a target id.
	ErrTargetNotFound = errors.New("target not found")
	// ErrInvocationReused an invocation was executed a second time
	ErrInvocationReused = errors.New("invocation already executed")
	// ErrRegistryFrozen is returned when registering after the registry was frozen.
	ErrRegistryFrozen = errors.New("advice registry is frozen")
	// ErrAspectNotFound is returned by the aspect DSL for an unknown aspect type.
	ErrAspectNotFound = errors.New("aspect type not found")
)

// FailureKind classifies a failure leaving the chain.
type FailureKind int

const (
	// NoFailure the call succeeded
	NoFailure FailureKind = iota
	// InvalidArgument a caller-correctable argument was rejected
	InvalidArgument
	// TargetFailure the wrapped call itself failed
	TargetFailure
	// AdviceFailure cross-cutting logic failed unexpectedly
	AdviceFailure
)

func (k FailureKind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case TargetFailure:
		return "TargetFailure"
	case AdviceFailure:
		return "AdviceFailure"
	default:
		return "None"
	}
}

// Classify maps an error to its failure kind. Errors that are neither
// invalid-argument nor advice failures are attributed to the target.
func Classify(err error) FailureKind {
	if err == nil {
		return NoFailure
	}
	if errors.Is(err, ErrInvalidArgument) {
		return InvalidArgument
	}
	var adviceErr *AdviceError
	if errors.As(err, &adviceErr) {
		return AdviceFailure
	}
	return TargetFailure
}

// InvalidArgumentError is raised by validation advice. Error() is exactly
// Message so callers see the message unchanged.
type InvalidArgumentError struct {
	Method  string
	Index   int
	Value   Value
	Message string
}

func NewInvalidArgumentError(inv *Invocation, index int, message string) *InvalidArgumentError {
	return &InvalidArgumentError{
		Method:  inv.Method,
		Index:   index,
		Value:   inv.Arg(index),
		Message: message,
	}
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// AdviceError reports a panic or unexpected failure inside advice logic.
type AdviceError struct {
	AdviceId string
	Kind     AdviceKind
	Cause    error
	Stack    string
}

func (e *AdviceError) Error() string {
	return fmt.Sprintf("%s advice %s failed: %v", e.Kind, e.AdviceId, e.Cause)
}

func (e *AdviceError) Unwrap() error {
	return e.Cause
}

// PanicError carries a panic recovered from a target call.
type PanicError struct {
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
