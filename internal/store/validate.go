package store

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"commonfields/internal/dsl"
	"commonfields/internal/plugins"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`) // YYYY-MM-DD
)

// validate проверяет и НОРМАЛИЗУЕТ rec.Data под схему. Уникальность проверяет плагин.
// Вызывается под s.mu.
func (s *Storage) validate(schema *dsl.Entity, rec *Record) []plugins.FieldError {
	var errs []plugins.FieldError

	// 1) required
	for _, f := range schema.Fields {
		if !strings.EqualFold(f.Options["required"], "true") {
			continue
		}
		if v, ok := rec.Data[f.Name]; !ok || v == nil {
			errs = append(errs, plugins.Ferr(plugins.ErrRequired, f.Name, "Path `"+f.Name+"` is required."))
		}
	}

	// 2) типы; неизвестные поля оставляем как есть
	for _, f := range schema.Fields {
		v, ok := rec.Data[f.Name]
		if !ok || v == nil {
			continue
		}
		norm, err := s.coerceValue(f, v)
		if err != nil {
			code := plugins.ErrTypeMismatch
			if f.Type == "enum" {
				code = plugins.ErrEnumInvalid
			}
			errs = append(errs, plugins.Ferr(code, f.Name, "Path `"+f.Name+"` "+err.Error()))
			continue
		}
		rec.Data[f.Name] = norm
	}
	return errs
}

func (s *Storage) coerceValue(f dsl.Field, v any) (any, error) {
	switch strings.ToLower(f.Type) {
	case "string":
		return toStringStrict(v)
	case "int":
		return toIntStrict(v)
	case "float", "money":
		return toFloatStrict(v)
	case "bool":
		return toBoolStrict(v)
	case "date":
		str, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		if !dateRe.MatchString(str) {
			return nil, errors.New("must match YYYY-MM-DD")
		}
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return nil, errors.New("invalid date")
		}
		return str, nil
	case "datetime":
		str, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			return nil, errors.New("must be RFC3339 datetime")
		}
		return str, nil
	case "enum":
		str, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		for _, ev := range f.Enum {
			if str == ev {
				return str, nil
			}
		}
		return nil, fmt.Errorf("value '%s' is not allowed", str)
	case "ref":
		id, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		target, ok := s.resolveRef(f.RefTarget)
		if !ok {
			return nil, fmt.Errorf("unknown target entity '%s'", f.RefTarget)
		}
		if !s.existsLocked(target, id) {
			return nil, fmt.Errorf("references non-existent %s '%s'", target, id)
		}
		return id, nil
	case "array":
		arr, ok := v.([]any)
		if !ok {
			if ss, isStrs := v.([]string); isStrs {
				arr = make([]any, 0, len(ss))
				for _, it := range ss {
					arr = append(arr, it)
				}
			} else {
				return nil, errors.New("must be array")
			}
		}
		elem := dsl.Field{Type: f.ElemType, Enum: f.Enum, RefTarget: f.RefTarget}
		out := make([]any, 0, len(arr))
		for i, ev := range arr {
			norm, err := s.coerceValue(elem, ev)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %v", i, err)
			}
			out = append(out, norm)
		}
		return out, nil
	default:
		return v, nil
	}
}

func toStringStrict(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", errors.New("must be string")
}

func toIntStrict(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		// JSON числа приходят как float64
		if t != float64(int64(t)) {
			return 0, errors.New("must be integer")
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.New("must be integer")
		}
		return n, nil
	default:
		return 0, errors.New("must be integer")
	}
}

func toFloatStrict(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, errors.New("must be float")
		}
		return f, nil
	default:
		return 0, errors.New("must be float")
	}
}

func toBoolStrict(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, errors.New("must be boolean")
}
