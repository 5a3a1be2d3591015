package types

import (
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq    CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt    CommonFilterOperator = "lt"
	CommonFilterOperatorLte   CommonFilterOperator = "lte"
	CommonFilterOperatorGt    CommonFilterOperator = "gt"
	CommonFilterOperatorGte   CommonFilterOperator = "gte"
	CommonFilterOperatorRange CommonFilterOperator = "range"
	CommonFilterOperatorIn    CommonFilterOperator = "in"
)

var commonFilterOperators = []CommonFilterOperator{
	CommonFilterOperatorEq,
	CommonFilterOperatorNotEq,
	CommonFilterOperatorLt,
	CommonFilterOperatorLte,
	CommonFilterOperatorGt,
	CommonFilterOperatorGte,
	CommonFilterOperatorRange,
	CommonFilterOperatorIn,
}

// CommonFilter is a single column predicate sent by admin listing APIs.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Validate rejects columns outside allowed, unknown operators and missing
// values. Field names end up in SQL, so callers must always validate first.
func (f *CommonFilter) Validate(allowed []string) error {
	if !lo.Contains(allowed, f.Field) {
		return fmt.Errorf("filter field %q is not allowed", f.Field)
	}
	if !lo.Contains(commonFilterOperators, f.Operator) {
		return fmt.Errorf("filter operator %q is not supported", f.Operator)
	}
	if len(f.Values) == 0 {
		return fmt.Errorf("filter on %q has no values", f.Field)
	}
	if f.Operator == CommonFilterOperatorRange && len(f.Values) < 2 {
		return fmt.Errorf("range filter on %q needs two values", f.Field)
	}
	return nil
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if len(f.Values) == 0 {
		return
	}
	col := clause.Column{Name: f.Field}
	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorNotEq:
		clause.Neq{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(clause.Gte{Column: col, Value: f.Values[0]}, clause.Lte{Column: col, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: col, Values: f.Values}.Build(builder)
	}
}

// FiltersAnd joins filters with AND into a single clause.Expression.
type FiltersAnd []*CommonFilter

func (fs FiltersAnd) Build(builder clause.Builder) {
	if len(fs) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, f := range fs {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		f.Build(builder)
	}
}
