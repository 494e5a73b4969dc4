// internals/features/billing/automation/service/condition.go
//
// Interpreter kecil untuk predikat kondisi aturan. Bentuknya array
// klausa AND:
//
//	[{"field":"age","op":"gte","value":6},
//	 {"field":"belt_level","op":"in","value":[3,4,5]}]
//
// Operator tetap: eq, neq, gt, gte, lt, lte, in, nin. Tidak ada
// nesting, tidak ada OR; aturan yang butuh OR dipecah jadi dua aturan.
package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

type Clause struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

// ParseConditions membaca kolom JSON aturan. NULL/kosong = tanpa
// syarat (selalu cocok).
func ParseConditions(raw datatypes.JSON) ([]Clause, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return nil, nil
	}

	var clauses []Clause
	if err := json.Unmarshal(raw, &clauses); err != nil {
		return nil, fmt.Errorf("kondisi bukan array klausa yang valid: %w", err)
	}
	for i := range clauses {
		if strings.TrimSpace(clauses[i].Field) == "" {
			return nil, fmt.Errorf("klausa #%d tanpa field", i+1)
		}
		switch clauses[i].Op {
		case "eq", "neq", "gt", "gte", "lt", "lte", "in", "nin":
		default:
			return nil, fmt.Errorf("operator %q tidak dikenal", clauses[i].Op)
		}
	}
	return clauses, nil
}

// EvaluateConditions mengecek semua klausa terhadap facts (AND).
// Field yang tidak ada di facts membuat klausa gagal, bukan error.
func EvaluateConditions(clauses []Clause, facts map[string]interface{}) (bool, error) {
	for _, cl := range clauses {
		ok, err := evalClause(cl, facts)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalClause(cl Clause, facts map[string]interface{}) (bool, error) {
	actual, exists := facts[cl.Field]
	if !exists {
		return false, nil
	}

	switch cl.Op {
	case "eq":
		return valuesEqual(actual, cl.Value), nil
	case "neq":
		return !valuesEqual(actual, cl.Value), nil

	case "gt", "gte", "lt", "lte":
		a, aok := toNumber(actual)
		b, bok := toNumber(cl.Value)
		if !aok || !bok {
			return false, fmt.Errorf("operator %q butuh angka (field %q)", cl.Op, cl.Field)
		}
		switch cl.Op {
		case "gt":
			return a > b, nil
		case "gte":
			return a >= b, nil
		case "lt":
			return a < b, nil
		default:
			return a <= b, nil
		}

	case "in", "nin":
		list, ok := cl.Value.([]interface{})
		if !ok {
			return false, fmt.Errorf("operator %q butuh array (field %q)", cl.Op, cl.Field)
		}
		found := false
		// Fact berupa list (mis. program_codes): cocok bila beririsan.
		if actualList, isList := actual.([]interface{}); isList {
			for _, av := range actualList {
				for _, lv := range list {
					if valuesEqual(av, lv) {
						found = true
					}
				}
			}
		} else if actualStrs, isStrs := actual.([]string); isStrs {
			for _, av := range actualStrs {
				for _, lv := range list {
					if valuesEqual(av, lv) {
						found = true
					}
				}
			}
		} else {
			for _, lv := range list {
				if valuesEqual(actual, lv) {
					found = true
				}
			}
		}
		if cl.Op == "in" {
			return found, nil
		}
		return !found, nil
	}
	return false, fmt.Errorf("operator %q tidak dikenal", cl.Op)
}

// valuesEqual menyamakan angka lintas tipe (json angka = float64)
// dan string case-sensitive.
func valuesEqual(a, b interface{}) bool {
	if an, aok := toNumber(a); aok {
		if bn, bok := toNumber(b); bok {
			return an == bn
		}
		return false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			return ab == bb
		}
	}
	return false
}

func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
