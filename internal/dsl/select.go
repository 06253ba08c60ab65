package dsl

import (
	"sort"
	"strings"
)

// Select — спецификация выборки полей при сериализации.
// Либо строка вида "-password +hide title", либо маппинг поле -> видимо.
type Select struct {
	Expr   string
	Fields map[string]bool
	isMap  bool
}

func SelectExpr(expr string) Select { return Select{Expr: strings.TrimSpace(expr)} }

func SelectMap(fields map[string]bool) Select {
	m := make(map[string]bool, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return Select{Fields: m, isMap: true}
}

func (s Select) IsMap() bool { return s.isMap }

func (s Select) IsEmpty() bool {
	if s.isMap {
		return len(s.Fields) == 0
	}
	return s.Expr == ""
}

func (s Select) Clone() Select {
	if s.isMap {
		return SelectMap(s.Fields)
	}
	return s
}

// SelectTerms — разобранная строка выборки.
type SelectTerms struct {
	Exclude map[string]bool // -name
	Force   map[string]bool // +name: показать, даже если исключено
	Include map[string]bool // name: режим «только перечисленные»
}

// Terms разбирает Expr. Для маппинга false -> Exclude, true -> Force.
func (s Select) Terms() SelectTerms {
	t := SelectTerms{
		Exclude: map[string]bool{},
		Force:   map[string]bool{},
		Include: map[string]bool{},
	}
	if s.isMap {
		for k, visible := range s.Fields {
			if visible {
				t.Force[k] = true
			} else {
				t.Exclude[k] = true
			}
		}
		return t
	}
	for _, tok := range strings.Fields(s.Expr) {
		switch {
		case strings.HasPrefix(tok, "-"):
			if name := tok[1:]; name != "" {
				t.Exclude[name] = true
			}
		case strings.HasPrefix(tok, "+"):
			if name := tok[1:]; name != "" {
				t.Force[name] = true
			}
		default:
			t.Include[tok] = true
		}
	}
	return t
}

// String — каноничное представление (для meta и логов).
func (s Select) String() string {
	if !s.isMap {
		return s.Expr
	}
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if s.Fields[k] {
			parts = append(parts, "+"+k)
		} else {
			parts = append(parts, "-"+k)
		}
	}
	return strings.Join(parts, " ")
}
