package api

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"commonfields/internal/store"
)

// ==== Типы сортировки и параметров листинга ====

type SortKey struct {
	Field string
	Desc  bool
}

type ListParams struct {
	Limit   int
	Offset  int
	Sort    []SortKey
	Filters map[string][]string
	Nulls   string // "last" (default) | "first"
}

// ==== Парсинг query-параметров ====

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// служебные ключи, не попадающие в фильтры
var reservedParams = map[string]bool{
	"offset": true, "limit": true, "sort": true, "order": true, "nulls": true,
	"_offset": true, "_limit": true, "_sort": true, "_order": true,
}

// firstOf: "_limit" приоритетнее "limit"
func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseListParams(q url.Values) ListParams {
	lp := ListParams{Limit: defaultLimit, Nulls: "last", Filters: map[string][]string{}}

	if n, err := strconv.Atoi(firstOf(q, "_limit", "limit")); err == nil && n >= 0 && n <= maxLimit {
		lp.Limit = n
	}
	if n, err := strconv.Atoi(firstOf(q, "_offset", "offset")); err == nil && n >= 0 {
		lp.Offset = n
	}

	// sort=-title,+created_at
	for _, p := range strings.Split(firstOf(q, "_sort", "sort"), ",") {
		p = strings.TrimSpace(p)
		desc := strings.HasPrefix(p, "-")
		p = strings.TrimLeft(p, "+-")
		if p != "" {
			lp.Sort = append(lp.Sort, SortKey{Field: p, Desc: desc})
		}
	}

	if strings.EqualFold(strings.TrimSpace(q.Get("nulls")), "first") {
		lp.Nulls = "first"
	}

	for key, vals := range q {
		if reservedParams[key] {
			continue
		}
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				lp.Filters[key] = append(lp.Filters[key], v)
			}
		}
	}
	return lp
}

// ==== Фильтрация: точное совпадение, несколько значений = ИЛИ ====

func filterRecords(all []*store.Record, lp ListParams) []*store.Record {
	if len(lp.Filters) == 0 {
		return all
	}
	out := make([]*store.Record, 0, len(all))
	for _, r := range all {
		if matchesAll(r, lp.Filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r *store.Record, filters map[string][]string) bool {
	for field, want := range filters {
		got, ok := r.Get(field)
		if !ok || got == nil {
			return false
		}
		gs := toString(got)
		hit := false
		for _, w := range want {
			if gs == w {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// ==== Утилита ====

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ==== Сортировка с политикой nulls ====

func isNull(v any, ok bool) bool { return !ok || v == nil }

// сравнение двух записей по одному ключу с учётом nullsPolicy и направления
func cmpByKey(a, b *store.Record, key string, nullsPolicy string, desc bool) int {
	va, oka := a.Get(key)
	vb, okb := b.Get(key)

	na := isNull(va, oka)
	nb := isNull(vb, okb)

	// nulls first/last
	if na && nb {
		return 0
	}
	if na != nb {
		if nullsPolicy == "last" {
			if na {
				return +1 // a=null → в конец при asc
			}
			return -1
		}
		// nulls=first
		if na {
			return -1
		}
		return +1
	}

	// оба не null: сравним строково
	sa := toString(va)
	sb := toString(vb)
	rel := 0
	if sa < sb {
		rel = -1
	} else if sa > sb {
		rel = +1
	}
	if desc {
		rel = -rel
	}
	return rel
}

// мультисортировка с учётом nullsPolicy
func sortRecordsMultiNulls(records []*store.Record, keys []SortKey, nullsPolicy string) {
	if len(keys) == 0 {
		return
	}
	type kspec struct {
		name string
		desc bool
	}
	specs := make([]kspec, 0, len(keys))
	for _, k := range keys {
		if k.Field == "" {
			continue
		}
		specs = append(specs, kspec{name: k.Field, desc: k.Desc})
	}

	sort.SliceStable(records, func(i, j int) bool {
		for _, s := range specs {
			if c := cmpByKey(records[i], records[j], s.name, nullsPolicy, s.desc); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
