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
	"math"
	"strconv"
	"strings"
)

// ValueKind 参数或返回值的类型标签
type ValueKind int

const (
	// NullKind marks the zero Value
	NullKind ValueKind = iota
	// NumberKind numeric value, stored as float64
	NumberKind
	// StringKind string value
	StringKind
	// BoolKind boolean value
	BoolKind
)

var ErrUnsupportedValue = errors.New("unsupported value type")

func (k ValueKind) String() string {
	switch k {
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case BoolKind:
		return "bool"
	default:
		return "null"
	}
}

// ParseValueKind 根据名称解析类型标签，"double"/"float"/"int" 都视为 number
func ParseValueKind(name string) (ValueKind, error) {
	switch name {
	case "number", "double", "float", "int":
		return NumberKind, nil
	case "string":
		return StringKind, nil
	case "bool", "boolean":
		return BoolKind, nil
	case "null", "":
		return NullKind, nil
	default:
		return NullKind, fmt.Errorf("unknown value kind %q", name)
	}
}

// Value is a tagged union carried as an invocation argument or result.
// Value 调用参数或者返回值，使用标签联合体代替 interface{}
type Value struct {
	kind    ValueKind
	number  float64
	str     string
	boolean bool
}

func Null() Value {
	return Value{}
}

func Number(f float64) Value {
	return Value{kind: NumberKind, number: f}
}

func String(s string) Value {
	return Value{kind: StringKind, str: s}
}

func Bool(b bool) Value {
	return Value{kind: BoolKind, boolean: b}
}

// ValueOf converts a Go scalar to a Value.
func ValueOf(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// MustValueOf is ValueOf that panics on unsupported types.
func MustValueOf(v interface{}) Value {
	value, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return value
}

// Values converts each element with ValueOf.
func Values(v ...interface{}) ([]Value, error) {
	values := make([]Value, 0, len(v))
	for i, item := range v {
		value, err := ValueOf(item)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		values = append(values, value)
	}
	return values, nil
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

func (v Value) IsNumber() bool {
	return v.kind == NumberKind
}

// Float64 returns the numeric payload; ok is false for non-numeric values.
func (v Value) Float64() (float64, bool) {
	return v.number, v.kind == NumberKind
}

func (v Value) Str() (string, bool) {
	return v.str, v.kind == StringKind
}

func (v Value) Boolean() (bool, bool) {
	return v.boolean, v.kind == BoolKind
}

// Interface returns the payload as a plain Go value, used by script and
// expression environments and JSON encoding.
func (v Value) Interface() interface{} {
	switch v.kind {
	case NumberKind:
		return v.number
	case StringKind:
		return v.str
	case BoolKind:
		return v.boolean
	default:
		return nil
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case NumberKind:
		return v.number == other.number || (math.IsNaN(v.number) && math.IsNaN(other.number))
	case StringKind:
		return v.str == other.str
	case BoolKind:
		return v.boolean == other.boolean
	default:
		return true
	}
}

// String formats numbers like a Java double: 3.0, 0.5, 1.0E10.
func (v Value) String() string {
	switch v.kind {
	case NumberKind:
		return formatDouble(v.number)
	case StringKind:
		return v.str
	case BoolKind:
		return strconv.FormatBool(v.boolean)
	default:
		return "null"
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if f != 0 && (abs >= 1e7 || abs < 1e-3) {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		return mantissa + "E" + trimExpZeros(strings.TrimPrefix(exp, "+"))
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func trimExpZeros(exp string) string {
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign, exp = "-", exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return sign + exp
}
