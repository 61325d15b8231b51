package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResponseKind tags a ResponseValue.
type ResponseKind string

const (
	KindScalar ResponseKind = "scalar"
	KindMulti  ResponseKind = "multi"
)

// ResponseValue is the answer to one question: a single string for every
// question type except Checkboxes, which holds an ordered set of labels.
type ResponseValue struct {
	kind   ResponseKind
	scalar string
	values []string
}

// Scalar builds a single-valued response.
func Scalar(s string) ResponseValue {
	return ResponseValue{kind: KindScalar, scalar: s}
}

// MultiValue builds a set response. Order of first appearance is kept and
// duplicates are dropped.
func MultiValue(values ...string) ResponseValue {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return ResponseValue{kind: KindMulti, values: out}
}

// EmptyFor returns the zero answer for a question type.
func EmptyFor(t QuestionType) ResponseValue {
	if t.MultiValued() {
		return MultiValue()
	}
	return Scalar("")
}

func (v ResponseValue) Kind() ResponseKind {
	if v.kind == "" {
		return KindScalar
	}
	return v.kind
}

func (v ResponseValue) IsMulti() bool {
	return v.kind == KindMulti
}

// Text returns the scalar string. It is empty for multi values.
func (v ResponseValue) Text() string {
	return v.scalar
}

// Values returns a copy of the set members. A scalar yields a one element
// slice unless it is empty.
func (v ResponseValue) Values() []string {
	if v.IsMulti() {
		return append([]string(nil), v.values...)
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

func (v ResponseValue) Contains(label string) bool {
	for _, x := range v.Values() {
		if x == label {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the value carries no answer text.
func (v ResponseValue) IsEmpty() bool {
	if v.IsMulti() {
		return len(v.values) == 0
	}
	return v.scalar == ""
}

// Matches reports whether the value's tag fits the question type.
func (v ResponseValue) Matches(t QuestionType) bool {
	return v.IsMulti() == t.MultiValued()
}

// As converts a value decoded without type information to the shape required
// by t. A scalar becomes a one element set for Checkboxes; a set is never
// narrowed to a scalar.
func (v ResponseValue) As(t QuestionType) (ResponseValue, bool) {
	if v.Matches(t) {
		return v, true
	}
	if t.MultiValued() {
		return MultiValue(v.Values()...), true
	}
	return v, false
}

func (v ResponseValue) Equal(other ResponseValue) bool {
	if v.IsMulti() != other.IsMulti() {
		return false
	}
	if !v.IsMulti() {
		return v.scalar == other.scalar
	}
	if len(v.values) != len(other.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

func (v ResponseValue) String() string {
	if v.IsMulti() {
		return "[" + strings.Join(v.values, ", ") + "]"
	}
	return v.scalar
}

// MarshalJSON encodes scalars as JSON strings and multi values as arrays.
func (v ResponseValue) MarshalJSON() ([]byte, error) {
	if v.IsMulti() {
		values := v.values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	return json.Marshal(v.scalar)
}

func (v *ResponseValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Scalar(s)
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("response value must be a string or a list of strings: %w", err)
	}
	*v = MultiValue(values...)
	return nil
}
