package store

import (
	"time"

	"commonfields/internal/dsl"
	"commonfields/internal/plugins"
)

const (
	keyInternalID = "_id"
	keyVersion    = "__v"
)

// ToJSON — представление для ответа API.
func (s *Storage) ToJSON(rec *Record) map[string]any {
	return s.serialize(rec, plugins.ModeJSON)
}

// ToObject: представление для внутреннего кода.
func (s *Storage) ToObject(rec *Record) map[string]any {
	return s.serialize(rec, plugins.ModeObject)
}

func (s *Storage) serialize(rec *Record, mode plugins.Mode) map[string]any {
	schema := s.Schemas[rec.entity]
	out := make(map[string]any, len(rec.Data)+5)
	out[keyInternalID] = rec.id
	for k, v := range rec.Data {
		out[k] = v
	}
	if schema == nil {
		return out
	}

	ser := schema.Serialization
	if flagOr(ser.VersionKey, true) {
		out[keyVersion] = rec.Version
	}
	ts := timestampNames(schema)
	if !rec.CreatedAt.IsZero() {
		out[ts.CreatedAt] = rec.CreatedAt.Format(time.RFC3339)
	}
	if !rec.UpdatedAt.IsZero() {
		out[ts.UpdatedAt] = rec.UpdatedAt.Format(time.RFC3339)
	}
	// геттеры виртуальных полей работают, только если включены и virtuals, и getters
	if flagOr(ser.Virtuals, false) && flagOr(ser.Getters, true) {
		for _, v := range schema.Virtuals {
			if v.Get == nil {
				continue
			}
			if val := v.Get(rec); val != nil {
				out[v.Name] = val
			}
		}
	}

	set := s.behaviors[rec.entity]
	switch {
	case set.Selector != nil:
		set.Selector.Apply(out)
	case ser.Select != nil && !ser.Select.IsEmpty():
		plugins.NewSelector(*ser.Select).Apply(out)
	}
	if set.Hidden != nil {
		set.Hidden.Filter(out, mode)
	}
	return out
}

func timestampNames(e *dsl.Entity) dsl.Timestamps {
	ts := dsl.Timestamps{CreatedAt: "created_at", UpdatedAt: "updated_at"}
	if e.Timestamps != nil {
		if e.Timestamps.CreatedAt != "" {
			ts.CreatedAt = e.Timestamps.CreatedAt
		}
		if e.Timestamps.UpdatedAt != "" {
			ts.UpdatedAt = e.Timestamps.UpdatedAt
		}
	}
	return ts
}

func flagOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
