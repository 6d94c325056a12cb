// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package conditional

import (
	"iter"

	"github.com/rbcompat/rbcompat/pkg/orderedmap"
)

// Evaluator decides whether the condition of a branch record holds.
type Evaluator func(condition interface{}) (bool, error)

// Branch is a view of a branch record.
type Branch struct {
	If      interface{}
	Then    interface{}
	Else    interface{}
	HasElse bool
}

// AsBranch reports whether val is a mapping with a non-null "if" key.
func AsBranch(val interface{}) (Branch, bool) {
	switch typedVal := val.(type) {
	case *orderedmap.Map:
		cond, _ := typedVal.Get("if")
		if cond == nil {
			return Branch{}, false
		}
		then, _ := typedVal.Get("then")
		els, _ := typedVal.Get("else")
		return Branch{If: cond, Then: then, Else: els, HasElse: els != nil}, true

	case map[string]interface{}:
		cond := typedVal["if"]
		if cond == nil {
			return Branch{}, false
		}
		els := typedVal["else"]
		return Branch{If: cond, Then: typedVal["then"], Else: els, HasElse: els != nil}, true

	default:
		return Branch{}, false
	}
}

// VisitErr walks value (a list or a single item) and yields the resolved
// items. Iteration stops after the first evaluator error, which is yielded
// with a nil item.
func VisitErr(value interface{}, eval Evaluator) iter.Seq2[interface{}, error] {
	return func(yield func(interface{}, error) bool) {
		items, ok := value.([]interface{})
		if !ok {
			items = []interface{}{value}
		}

		for _, item := range items {
			branch, isBranch := AsBranch(item)
			if !isBranch {
				if !yield(item, nil) {
					return
				}
				continue
			}

			if eval == nil {
				if !yieldFlat(branch.Then, yield) {
					return
				}
				if branch.HasElse && !yieldFlat(branch.Else, yield) {
					return
				}
				continue
			}

			holds, err := eval(branch.If)
			if err != nil {
				yield(nil, err)
				return
			}

			switch {
			case holds:
				if !yieldFlat(branch.Then, yield) {
					return
				}
			case branch.HasElse:
				if !yieldFlat(branch.Else, yield) {
					return
				}
			}
		}
	}
}

// Visit is VisitErr for evaluators that cannot fail (or a nil evaluator).
// Evaluation errors end the sequence silently; use VisitErr or Collect
// when they matter.
func Visit(value interface{}, eval Evaluator) iter.Seq[interface{}] {
	return func(yield func(interface{}) bool) {
		for item, err := range VisitErr(value, eval) {
			if err != nil || !yield(item) {
				return
			}
		}
	}
}

// Collect gathers the resolved items into a slice.
func Collect(value interface{}, eval Evaluator) ([]interface{}, error) {
	result := []interface{}{}
	for item, err := range VisitErr(value, eval) {
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func yieldFlat(val interface{}, yield func(interface{}, error) bool) bool {
	if items, ok := val.([]interface{}); ok {
		for _, item := range items {
			if !yield(item, nil) {
				return false
			}
		}
		return true
	}
	return yield(val, nil)
}
