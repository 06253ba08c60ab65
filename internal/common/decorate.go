// Package common навешивает на схему сущности общие поля (id, object, locale),
// хук перед сохранением, настройки сериализации, имена полей времени
// и делегированные плагины.
package common

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"commonfields/internal/dsl"
	"commonfields/internal/plugins"
)

const (
	FieldID     = "id"
	FieldObject = "object"
	FieldLocale = "locale"

	// приватный атрибут документа под виртуальным locale
	localeAttr = "__locale"
)

// Decorate возвращает НОВУЮ схему на основе base; base не меняется.
// Единственная ошибка: *ConfigurationError при пустом/нестроковом object.
func Decorate(base *dsl.Entity, opts Options) (*dsl.Entity, error) {
	// 1) слияние с умолчаниями
	s := merge(opts)

	// 2) валидация
	if opts.objectNotString {
		return nil, &ConfigurationError{Option: "object", Reason: "must be a string (e.g. object: user)"}
	}
	if strings.TrimSpace(s.object) == "" {
		return nil, &ConfigurationError{Option: "object", Reason: "must be a non-empty name (e.g. object: user)"}
	}
	tag := strings.TrimSpace(s.object)

	var e *dsl.Entity
	if base != nil {
		e = base.Clone()
	} else {
		e = &dsl.Entity{}
	}

	// 3) поля
	idOpts := map[string]string{"index": "true"}
	if s.uniqueID {
		idOpts["unique"] = "true"
	}
	e.AddField(dsl.Field{Name: FieldID, Type: "string", Options: idOpts})
	e.AddField(dsl.Field{Name: FieldObject, Type: "string", Options: map[string]string{"trim": "true"}})

	// 4) виртуальный locale
	if s.locale {
		e.Virtual(localeVirtual(s.defaultLocale))
	}

	// 5) перед сохранением: id из внутреннего идентификатора, object = тег
	e.PreSave(stampHook(tag))

	// 6) видимость полей
	vis := ComputeVisibility(s.omitCommonFields, s.omitExtraFields, s.camelCase)

	// 7) сериализация; явные настройки самой схемы побеждают
	sel := vis.Select
	e.SetSerialization(dsl.Serialization{
		Getters:    dsl.Bool(true),
		Virtuals:   dsl.Bool(true),
		VersionKey: dsl.Bool(false),
		Select:     &sel,
	})

	// 8) поля времени
	if s.camelCase {
		e.SetTimestamps(dsl.Timestamps{CreatedAt: "createdAt", UpdatedAt: "updatedAt"})
	} else {
		e.SetTimestamps(dsl.Timestamps{CreatedAt: "created_at", UpdatedAt: "updated_at"})
	}

	// 9) плагины, порядок фиксирован
	if s.uniqueEnabled {
		e.Use(plugins.NameUniqueValidator, s.unique)
	}
	e.Use(plugins.NameErrorTransform, s.errTransform)
	e.Use(plugins.NameHidden, hiddenOptions(vis, s.hidden))
	e.Use(plugins.NameJSONSelect, e.Serialization.Select.Clone())

	zap.L().Debug("common fields applied",
		zap.String("entity", e.FQN()),
		zap.String("object", tag),
		zap.String("select", e.Serialization.Select.String()),
		zap.Bool("locale", s.locale),
		zap.Bool("camelCase", s.camelCase),
	)
	return e, nil
}

func localeVirtual(def *string) dsl.Virtual {
	var fallback any
	if def != nil && *def != "" {
		fallback = *def
	}
	return dsl.Virtual{
		Name: FieldLocale,
		Get: func(d dsl.Document) any {
			if v, ok := d.Local(localeAttr); ok && v != nil {
				return v
			}
			return fallback
		},
		Set: func(d dsl.Document, v any) {
			d.SetLocal(localeAttr, v)
		},
	}
}

func stampHook(tag string) dsl.HookFunc {
	return func(_ context.Context, d dsl.Document) error {
		d.Set(FieldID, d.Identity())
		d.Set(FieldObject, tag)
		return nil
	}
}

// hiddenOptions: вычисленный маппинг + пакет вызывающего (его ключи побеждают).
func hiddenOptions(vis Visibility, b HiddenBundle) plugins.HiddenOptions {
	hidden := vis.Hidden
	if b.Hidden != nil {
		hidden = b.Hidden
	}
	cp := make(map[string]bool, len(hidden))
	for k, v := range hidden {
		cp[k] = v
	}
	return plugins.HiddenOptions{
		Hidden:     cp,
		HideJSON:   b.HideJSON.Or(true),
		HideObject: b.HideObject.Or(true),
	}
}
