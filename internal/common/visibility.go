package common

import (
	"strings"

	"commonfields/internal/dsl"
	"commonfields/internal/omit"
)

// Visibility — что прятать при сериализации: спецификация выборки и маппинг name -> скрыто.
// Оба представления всегда согласованы.
type Visibility struct {
	Select dsl.Select
	Hidden map[string]bool
}

// ComputeVisibility строит выборку из общих полей и дополнительных полей вызывающего.
func ComputeVisibility(omitCommonFields bool, extra ExtraFields, camelCase bool) Visibility {
	table := omit.For(camelCase)

	switch extra.kind {
	case extraList:
		var names []string
		if omitCommonFields {
			names = append(names, table.Keys...)
		}
		names = append(names, extra.list...)
		return fromList(names)

	case extraMap:
		sel := make(map[string]bool, len(extra.visible)+len(table.Keys))
		hidden := make(map[string]bool, len(extra.visible)+len(table.Keys))
		for k, visible := range extra.visible {
			sel[k] = visible
			hidden[k] = !visible
		}
		if omitCommonFields {
			// значения вызывающего не перетираются
			for _, k := range table.Keys {
				if _, ok := sel[k]; ok {
					continue
				}
				sel[k] = false
				hidden[k] = true
			}
		}
		return Visibility{Select: dsl.SelectMap(sel), Hidden: hidden}
	}

	if omitCommonFields {
		hidden := make(map[string]bool, len(table.Keys))
		for _, k := range table.Keys {
			hidden[k] = true
		}
		return Visibility{Select: dsl.SelectExpr(table.Expr), Hidden: hidden}
	}
	return Visibility{Select: dsl.SelectExpr(""), Hidden: map[string]bool{}}
}

// fromList: "name" скрывается, "-name" показывается принудительно (в выборке "+name").
// Принудительный показ побеждает независимо от порядка.
// Элемент с пробелами ("a -b") разбирается как несколько имён, как и выражение выборки.
func fromList(names []string) Visibility {
	hidden := map[string]bool{}
	var order []string
	var tokens []string
	for _, raw := range names {
		tokens = append(tokens, strings.Fields(raw)...)
	}
	for _, name := range tokens {
		force := strings.HasPrefix(name, "-")
		if force {
			name = name[1:]
		}
		if name == "" {
			continue
		}
		prev, seen := hidden[name]
		if !seen {
			order = append(order, name)
		}
		switch {
		case force:
			hidden[name] = false
		case seen && !prev:
			// уже показан принудительно
		default:
			hidden[name] = true
		}
	}

	parts := make([]string, 0, len(order))
	for _, name := range order {
		if hidden[name] {
			parts = append(parts, "-"+name)
		} else {
			parts = append(parts, "+"+name)
		}
	}
	return Visibility{Select: dsl.SelectExpr(strings.Join(parts, " ")), Hidden: hidden}
}
