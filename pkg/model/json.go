package model

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes Value according to Kind and ValueType so that trees
// received over the wire carry the same Go types the reader produces.
func (v *PropValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind      PropValueKind   `json:"kind"`
		ValueType PropValueType   `json:"valueType"`
		Value     json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v.Kind = raw.Kind
	v.ValueType = raw.ValueType
	v.Value = nil
	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}

	switch raw.Kind {
	case ValueKindList:
		var items []PropValue
		if err := json.Unmarshal(raw.Value, &items); err != nil {
			return fmt.Errorf("list prop value: %w", err)
		}
		v.Value = items
	case ValueKindPropRef, ValueKindExpression:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return fmt.Errorf("%s prop value: %w", raw.Kind, err)
		}
		v.Value = s
	case ValueKindLiteral:
		decoded, err := decodeLiteral(raw.ValueType, raw.Value)
		if err != nil {
			return fmt.Errorf("literal prop value: %w", err)
		}
		v.Value = decoded
	default:
		return fmt.Errorf("unknown prop value kind %q", raw.Kind)
	}
	return nil
}

func decodeLiteral(valueType PropValueType, data json.RawMessage) (any, error) {
	switch valueType {
	case TypeObject:
		var obj PropValues
		err := json.Unmarshal(data, &obj)
		return obj, err
	case TypeString:
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	case TypeNumber:
		var n float64
		err := json.Unmarshal(data, &n)
		return n, err
	case TypeBoolean:
		var b bool
		err := json.Unmarshal(data, &b)
		return b, err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	switch generic.(type) {
	case string, float64, bool:
		return generic, nil
	}
	return nil, fmt.Errorf("cannot infer literal type of %s", string(data))
}
