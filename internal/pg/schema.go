package pg

import (
	"fmt"
	"sort"
	"strings"

	"commonfields/internal/dsl"
)

// Системные колонки таблицы документа.
const (
	ColumnID      = "_id"
	ColumnVersion = "__v"
	ColumnDeleted = "_deleted"
)

type OnDeletePolicy string

const (
	OnDeleteRestrict OnDeletePolicy = "RESTRICT"
	OnDeleteSetNull  OnDeletePolicy = "SET NULL"
)

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

// элементарная плюрализация (достаточно для users, projects, ...)
func plural(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// schema = module (lower), table = plural(entity) с защитой keyword'ов
func safeSchema(module string) string { return strings.ToLower(module) }

func safeTable(entity string) string {
	t := plural(entity)
	t = strings.ToLower(t)
	if isReserved(t) {
		// помечаем «опасное» имя префиксом
		t = "e_" + t
	}
	return t
}

// sqlIdent для схем и таблиц (нижний регистр)
func sqlIdent(s string) string { return `"` + strings.ToLower(s) + `"` }

// colIdent сохраняет регистр: createdAt и created_at разные колонки
func colIdent(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

func optTrue(f dsl.Field, key string) bool {
	return strings.EqualFold(strings.TrimSpace(f.Options[key]), "true")
}

func timestampColumns(e *dsl.Entity) (string, string) {
	created, updated := "created_at", "updated_at"
	if e.Timestamps != nil {
		if e.Timestamps.CreatedAt != "" {
			created = e.Timestamps.CreatedAt
		}
		if e.Timestamps.UpdatedAt != "" {
			updated = e.Timestamps.UpdatedAt
		}
	}
	return created, updated
}

func mapType(f dsl.Field) (string, error) {
	t := strings.ToLower(f.Type)
	switch t {
	case "string":
		return "text", nil
	case "int":
		return "bigint", nil
	case "float":
		return "double precision", nil
	case "money":
		return "numeric(18,2)", nil
	case "bool":
		return "boolean", nil
	case "date":
		return "date", nil
	case "datetime":
		return "timestamp with time zone", nil
	case "enum":
		return "text", nil
	case "ref":
		return "text", nil // id целевой записи
	case "array":
		return "jsonb", nil
	default:
		return "", fmt.Errorf("unknown type: %s", f.Type)
	}
}

func onDeletePolicy(f dsl.Field) OnDeletePolicy {
	switch strings.ToLower(strings.TrimSpace(f.Options["on_delete"])) {
	case "set_null":
		return OnDeleteSetNull
	default:
		return OnDeleteRestrict
	}
}

// GenerateDDL возвращает фазы DDL: "000_schemas_and_tables" и "200_fk_<name>" на каждый FK.
// ApplyDDL исполняет их в порядке ключей.
func GenerateDDL(entities map[string]*dsl.Entity) (map[string]string, error) {
	out := make(map[string]string, 1)

	// стабильный порядок сущностей
	keys := make([]string, 0, len(entities))
	for k := range entities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// --- Phase A: schemas + tables + unique ---
	var phaseASb strings.Builder
	seenSchemas := map[string]struct{}{}

	// соберём FK для второй фазы
	type fkStmt struct {
		mod, tbl, idxName, col, refMod, refTbl string
		onDelete                               OnDeletePolicy
	}
	var fks []fkStmt

	for _, fqnKey := range keys {
		e := entities[fqnKey]

		// безопасные имена
		mod := safeSchema(e.Module)
		tbl := safeTable(e.Name)

		// schema
		if _, ok := seenSchemas[mod]; !ok {
			fmt.Fprintf(&phaseASb, "create schema if not exists %s;\n", sqlIdent(mod))
			seenSchemas[mod] = struct{}{}
		}

		// системные колонки
		createdCol, updatedCol := timestampColumns(e)
		cols := []string{
			colIdent(ColumnID) + " text primary key",
			colIdent(ColumnVersion) + " bigint not null",
			colIdent(createdCol) + " timestamp with time zone not null",
			colIdent(updatedCol) + " timestamp with time zone not null",
			colIdent(ColumnDeleted) + " boolean not null default false",
		}
		seen := map[string]struct{}{
			ColumnID: {}, ColumnVersion: {}, ColumnDeleted: {},
			createdCol: {}, updatedCol: {},
		}

		// поля схемы, включая id/object
		for _, f := range e.Fields {
			if _, exists := seen[f.Name]; exists {
				return nil, fmt.Errorf("%s: field %q duplicates a system or duplicate column", fqnKey, f.Name)
			}
			seen[f.Name] = struct{}{}

			typ, err := mapType(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", fqnKey, f.Name, err)
			}

			null := "null"
			if optTrue(f, "required") {
				null = "not null"
			}
			def := ""
			if dv := strings.TrimSpace(f.Options["default"]); dv != "" {
				def = " default '" + strings.ReplaceAll(dv, "'", "''") + "'"
			}
			cols = append(cols, fmt.Sprintf("%s %s %s%s", colIdent(f.Name), typ, null, def))
		}

		fmt.Fprintf(&phaseASb, "create table if not exists %s.%s (\n  %s\n);\n",
			sqlIdent(mod), sqlIdent(tbl), strings.Join(cols, ",\n  "))

		// индексы по опциям полей; unique важнее index
		for _, f := range e.Fields {
			idx := strings.ToLower(e.Name + "_" + f.Name)
			switch {
			case optTrue(f, "unique"):
				fmt.Fprintf(&phaseASb, "create unique index if not exists %s on %s.%s(%s);\n",
					sqlIdent(idx+"_uq"), sqlIdent(mod), sqlIdent(tbl), colIdent(f.Name))
			case optTrue(f, "index"):
				fmt.Fprintf(&phaseASb, "create index if not exists %s on %s.%s(%s);\n",
					sqlIdent(idx+"_idx"), sqlIdent(mod), sqlIdent(tbl), colIdent(f.Name))
			}
		}

		// UNIQUE составные
		for _, set := range e.Constraints.Unique {
			if len(set) == 0 {
				continue
			}
			idxName := strings.ToLower(e.Name + "_" + strings.Join(set, "_") + "_uq")
			var parts []string
			for _, p := range set {
				parts = append(parts, colIdent(p))
			}
			fmt.Fprintf(&phaseASb, "create unique index if not exists %s on %s.%s(%s);\n",
				sqlIdent(idxName), sqlIdent(mod), sqlIdent(tbl), strings.Join(parts, ", "))
		}

		// FK собираем, но не исполняем пока
		for _, f := range e.Fields {
			if strings.EqualFold(f.Type, "ref") && f.RefTarget != "" {
				refMod := e.Module
				refEnt := f.RefTarget
				if strings.Contains(refEnt, ".") {
					parts := strings.SplitN(refEnt, ".", 2)
					refMod, refEnt = parts[0], parts[1]
				}
				fks = append(fks, fkStmt{
					mod:      mod,
					tbl:      tbl,
					idxName:  strings.ToLower(e.Name + "_" + f.Name + "_fk"),
					col:      f.Name,
					refMod:   safeSchema(refMod),
					refTbl:   safeTable(refEnt),
					onDelete: onDeletePolicy(f),
				})
			}
		}
	}

	// общий SQL для схем и таблиц
	out["000_schemas_and_tables"] = phaseASb.String()

	// --- Phase B: foreign keys, по одному на ключ: повтор даёт 42710 только на своём
	for _, fk := range fks {
		out["200_fk_"+fk.idxName] = fmt.Sprintf(
			"alter table %s.%s add constraint %s foreign key (%s) references %s.%s(%s) on delete %s;",
			sqlIdent(fk.mod), sqlIdent(fk.tbl),
			sqlIdent(fk.idxName),
			colIdent(fk.col),
			sqlIdent(fk.refMod), sqlIdent(fk.refTbl), colIdent(ColumnID),
			fk.onDelete,
		)
	}

	return out, nil
}
