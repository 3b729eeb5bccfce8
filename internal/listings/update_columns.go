package listings

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
)

const defaultCurrency = "USD"

type columnMapper func(value any) (any, error)

// updatableColumns is the allow-list of fields an update may touch.
var updatableColumns = map[string]columnMapper{
	"title":         mapTrimmedString,
	"description":   mapNullableString,
	"property_type": mapTrimmedString,
	"modality":      mapTrimmedString,
	"price":         mapDecimal,
	"currency":      mapUpperString,
	"address":       mapNullableString,
	"neighborhood":  mapNullableString,
	"city":          mapNullableString,
	"bedrooms":      mapNullableInt,
	"bathrooms":     mapNullableInt,
	"area_m2":       mapNullableFloat,
	"media":         mapStringArray,
	"featured":      mapBool,
	"state":         mapTrimmedString,
}

// updateColumns converts a validated payload into a column map.
func updateColumns(payload map[string]any) (map[string]any, error) {
	columns := make(map[string]any, len(payload))
	for field, value := range payload {
		mapper, ok := updatableColumns[field]
		if !ok {
			continue
		}
		mapped, err := mapper(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing update").
				WithDetails(map[string]string{field: err.Error()})
		}
		columns[field] = mapped
	}
	return columns, nil
}

func mapTrimmedString(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("must not be empty")
	}
	return s, nil
}

func mapUpperString(value any) (any, error) {
	s, err := mapTrimmedString(value)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s.(string)), nil
}

func mapNullableString(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string")
	}
	return s, nil
}

func mapDecimal(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return nil, fmt.Errorf("expected number")
	}
}

func mapNullableInt(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("expected integer")
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("expected integer")
		}
		return int(n), nil
	default:
		return nil, fmt.Errorf("expected integer")
	}
}

func mapNullableFloat(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return nil, fmt.Errorf("expected number")
	}
}

func mapStringArray(value any) (any, error) {
	switch v := value.(type) {
	case []string:
		return pq.StringArray(append([]string{}, v...)), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected array of strings")
			}
			out = append(out, s)
		}
		return pq.StringArray(out), nil
	default:
		return nil, fmt.Errorf("expected array of strings")
	}
}

func mapBool(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean")
	}
	return b, nil
}
