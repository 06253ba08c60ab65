package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"commonfields/internal/dsl"
	"commonfields/internal/store"
)

// ===== META HANDLERS =====

type metaEntityListItem struct {
	Module string `json:"module"`
	Entity string `json:"entity"`
}

func MetaListHandler(storage *store.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]metaEntityListItem, 0, len(storage.Schemas))
		for fqn := range storage.Schemas {
			mod, ent := store.SplitFQN(fqn)
			out = append(out, metaEntityListItem{Module: mod, Entity: ent})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Module != out[j].Module {
				return out[i].Module < out[j].Module
			}
			return out[i].Entity < out[j].Entity
		})
		c.JSON(http.StatusOK, out)
	}
}

type metaField struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	ElemType string            `json:"elemType,omitempty"`
	Ref      string            `json:"ref,omitempty"`
	RefFQN   string            `json:"refFQN,omitempty"`
	Enum     []string          `json:"enum,omitempty"`
	Options  map[string]string `json:"options,omitempty"`
}

type metaSerialization struct {
	Getters    bool   `json:"getters"`
	Virtuals   bool   `json:"virtuals"`
	VersionKey bool   `json:"versionKey"`
	Select     string `json:"select,omitempty"`
}

type metaEntity struct {
	Module        string            `json:"module"`
	Entity        string            `json:"entity"`
	Fields        []metaField       `json:"fields"`
	Virtuals      []string          `json:"virtuals,omitempty"`
	Constraints   map[string]any    `json:"constraints,omitempty"` // {"unique":[["code"],["base","quote","date"]]}
	Serialization metaSerialization `json:"serialization"`
	Timestamps    *dsl.Timestamps   `json:"timestamps,omitempty"`
	Plugins       []string          `json:"plugins,omitempty"`
}

func MetaEntityHandler(storage *store.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		mod := c.Param("module")
		ent := c.Param("entity")

		fqn, ok := storage.NormalizeEntityName(mod, ent)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		schema := storage.Schemas[fqn]

		fields := make([]metaField, 0, len(schema.Fields))
		for _, f := range schema.Fields {
			opts := map[string]string{}
			if f.Options != nil {
				for k, v := range f.Options {
					opts[k] = v
				}
			}

			ref := ""
			refFQN := ""

			// одиночный ref
			if strings.EqualFold(f.Type, "ref") && f.RefTarget != "" {
				ref = f.RefTarget
			}
			// массив ссылок
			if strings.EqualFold(f.Type, "array") && strings.EqualFold(f.ElemType, "ref") && f.RefTarget != "" {
				ref = f.RefTarget
			}

			if ref != "" {
				refMod := schema.Module
				refEnt := ref
				if strings.Contains(ref, ".") {
					parts := strings.SplitN(ref, ".", 2)
					refMod, refEnt = parts[0], parts[1]
				}
				if full, ok := storage.NormalizeEntityName(refMod, refEnt); ok {
					refFQN = full
				}
			}

			fields = append(fields, metaField{
				Name:     f.Name,
				Type:     strings.ToLower(f.Type),
				ElemType: f.ElemType,
				Ref:      ref,
				RefFQN:   refFQN,
				Enum:     append([]string(nil), f.Enum...),
				Options:  opts,
			})
		}

		var constraints map[string]any
		if len(schema.Constraints.Unique) > 0 {
			uniq := make([][]string, 0, len(schema.Constraints.Unique))
			for _, set := range schema.Constraints.Unique {
				uniq = append(uniq, append([]string(nil), set...))
			}
			constraints = map[string]any{"unique": uniq}
		}

		virtuals := make([]string, 0, len(schema.Virtuals))
		for _, v := range schema.Virtuals {
			virtuals = append(virtuals, v.Name)
		}
		plugs := make([]string, 0, len(schema.Plugins))
		for _, p := range schema.Plugins {
			plugs = append(plugs, p.Name)
		}

		ser := schema.Serialization
		ms := metaSerialization{
			Getters:    ser.Getters != nil && *ser.Getters,
			Virtuals:   ser.Virtuals != nil && *ser.Virtuals,
			VersionKey: ser.VersionKey == nil || *ser.VersionKey,
		}
		if ser.Select != nil {
			ms.Select = ser.Select.String()
		}

		m, e := store.SplitFQN(fqn)
		c.JSON(http.StatusOK, metaEntity{
			Module:        m,
			Entity:        e,
			Fields:        fields,
			Virtuals:      virtuals,
			Constraints:   constraints,
			Serialization: ms,
			Timestamps:    schema.Timestamps,
			Plugins:       plugs,
		})
	}
}
