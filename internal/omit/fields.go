// Package omit содержит справочник «типично чувствительных» полей,
// которые по умолчанию не должны попадать в сериализованный вывод.
package omit

import "strings"

// Table — один и тот же набор полей в трёх равнозначных формах.
type Table struct {
	Keys   []string        // порядок важен для строки выборки
	Select map[string]bool // name -> false (скрыто)
	Expr   string          // "-a -b ..."
}

var underscoredKeys = []string{
	"_id",
	"__v",
	"password",
	"salt",
	"hash",
	"reset_token",
	"reset_token_expires_at",
	"api_token",
	"email_verification_token",
}

var camelCasedKeys = []string{
	"_id",
	"__v",
	"password",
	"salt",
	"hash",
	"resetToken",
	"resetTokenExpiresAt",
	"apiToken",
	"emailVerificationToken",
}

var (
	underscored = build(underscoredKeys)
	camelCased  = build(camelCasedKeys)
)

func build(keys []string) Table {
	sel := make(map[string]bool, len(keys))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		sel[k] = false
		parts = append(parts, "-"+k)
	}
	return Table{
		Keys:   append([]string(nil), keys...),
		Select: sel,
		Expr:   strings.Join(parts, " "),
	}
}

// For возвращает копию таблицы под соглашение об именовании.
func For(camelCase bool) Table {
	t := underscored
	if camelCase {
		t = camelCased
	}
	return t.copy()
}

func Underscored() Table { return underscored.copy() }
func CamelCased() Table  { return camelCased.copy() }

func (t Table) copy() Table {
	sel := make(map[string]bool, len(t.Select))
	for k, v := range t.Select {
		sel[k] = v
	}
	return Table{Keys: append([]string(nil), t.Keys...), Select: sel, Expr: t.Expr}
}

func (t Table) Has(name string) bool {
	_, ok := t.Select[name]
	return ok
}
