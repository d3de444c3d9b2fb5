package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// VariantKind はバリアントの種別
type VariantKind string

const (
	VariantNone    VariantKind = ""
	VariantScalar  VariantKind = "scalar"
	VariantMapping VariantKind = "mapping"
	VariantSet     VariantKind = "set"
)

// Variant は同一商品の選択肢（サイズ・色など）。
// アイテムの同一性判定にのみ使う。metadataは判定に含めない。
type Variant struct {
	Kind    VariantKind
	Scalar  any // string / float64 / bool のいずれか
	Mapping map[string]string
	Set     []string
}

// ScalarVariant は数値をfloat64に正規化する。
// JSONの往復で数値はfloat64になるため、等価判定が崩れないようにする。
func ScalarVariant(v any) Variant {
	switch n := v.(type) {
	case int:
		v = float64(n)
	case int8:
		v = float64(n)
	case int16:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint8:
		v = float64(n)
	case uint16:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case float32:
		v = float64(n)
	}
	return Variant{Kind: VariantScalar, Scalar: v}
}

func MappingVariant(m map[string]string) Variant {
	return Variant{Kind: VariantMapping, Mapping: m}
}

func SetVariant(values ...string) Variant {
	return Variant{Kind: VariantSet, Set: values}
}

func (v Variant) IsNone() bool {
	return v.Kind == VariantNone
}

// Equal は種別ごとの等価判定。
// mappingはキーと値が一致すれば順序不問、setは順序・重複不問。
func (v Variant) Equal(other Variant) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case VariantNone:
		return true
	case VariantScalar:
		return v.Scalar == other.Scalar
	case VariantMapping:
		if len(v.Mapping) != len(other.Mapping) {
			return false
		}
		for k, val := range v.Mapping {
			ov, ok := other.Mapping[k]
			if !ok || ov != val {
				return false
			}
		}
		return true
	case VariantSet:
		return setOf(v.Set).equal(setOf(other.Set))
	default:
		return false
	}
}

type stringSet map[string]struct{}

func setOf(values []string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s stringSet) equal(other stringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON は自然なJSON形にする。
// scalar→そのまま、mapping→object、set→array（ソート済み）、none→null
func (v Variant) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case VariantNone:
		return []byte("null"), nil
	case VariantScalar:
		return json.Marshal(v.Scalar)
	case VariantMapping:
		return json.Marshal(v.Mapping)
	case VariantSet:
		// 順序を安定させる
		set := setOf(v.Set)
		values := make([]string, 0, len(set))
		for k := range set {
			values = append(values, k)
		}
		sort.Strings(values)
		return json.Marshal(values)
	default:
		return nil, fmt.Errorf("unknown variant kind: %q", v.Kind)
	}
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = Variant{}
	case string, float64, bool:
		*v = Variant{Kind: VariantScalar, Scalar: val}
	case map[string]any:
		m := make(map[string]string, len(val))
		for k, mv := range val {
			s, ok := mv.(string)
			if !ok {
				return fmt.Errorf("variant mapping value must be string: %v", mv)
			}
			m[k] = s
		}
		*v = Variant{Kind: VariantMapping, Mapping: m}
	case []any:
		values := make([]string, 0, len(val))
		for _, sv := range val {
			s, ok := sv.(string)
			if !ok {
				return fmt.Errorf("variant set value must be string: %v", sv)
			}
			values = append(values, s)
		}
		*v = Variant{Kind: VariantSet, Set: values}
	default:
		return fmt.Errorf("unsupported variant json: %s", string(data))
	}
	return nil
}
