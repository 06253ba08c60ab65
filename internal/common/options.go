package common

import (
	"strings"

	"commonfields/internal/plugins"
)

const DefaultLocale = "en"

// Flag — булева опция с тремя состояниями: не задано / true / false.
// Из конфигов принимает только true, false, "true", "false".
type Flag struct {
	set bool
	val bool
}

func FlagOf(v bool) Flag { return Flag{set: true, val: v} }

var (
	True  = FlagOf(true)
	False = FlagOf(false)
)

func (f Flag) IsSet() bool { return f.set }

// Or возвращает значение или def, если флаг не задан.
func (f Flag) Or(def bool) bool {
	if !f.set {
		return def
	}
	return f.val
}

// ParseFlag: строгое приведение к bool.
func ParseFlag(v any) (Flag, bool) {
	switch t := v.(type) {
	case bool:
		return FlagOf(t), true
	case string:
		switch strings.TrimSpace(t) {
		case "true":
			return True, true
		case "false":
			return False, true
		}
	}
	return Flag{}, false
}

type extraKind uint8

const (
	extraUnset extraKind = iota
	extraNone
	extraList
	extraMap
)

// ExtraFields — дополнительные поля для скрытия:
// ExcludeList(...) | VisibilityMap(...) | NoExtraFields(). Нулевое значение = «не задано».
type ExtraFields struct {
	kind    extraKind
	list    []string
	visible map[string]bool
}

// ExcludeList: имена скрываются; "-name" принудительно показывает поле.
func ExcludeList(names ...string) ExtraFields {
	return ExtraFields{kind: extraList, list: append([]string{}, names...)}
}

// VisibilityMap: name -> видимо.
func VisibilityMap(m map[string]bool) ExtraFields {
	cp := make(map[string]bool, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return ExtraFields{kind: extraMap, visible: cp}
}

func NoExtraFields() ExtraFields { return ExtraFields{kind: extraNone} }

func (x ExtraFields) IsSet() bool { return x.kind != extraUnset }

func (x ExtraFields) List() ([]string, bool) {
	if x.kind != extraList {
		return nil, false
	}
	return append([]string(nil), x.list...), true
}

func (x ExtraFields) Map() (map[string]bool, bool) {
	if x.kind != extraMap {
		return nil, false
	}
	return VisibilityMap(x.visible).visible, true
}

// UniqueValidatorBundle — опции проверки уникальности. Disabled = передали false.
type UniqueValidatorBundle struct {
	Disabled bool
	Message  string
}

type ErrorTransformBundle struct {
	Capitalize Flag
	Humanize   Flag
	Transform  func(messages []string) string
}

type HiddenBundle struct {
	// Hidden, если задан, целиком заменяет вычисленный маппинг скрытых полей
	Hidden     map[string]bool
	HideJSON   Flag
	HideObject Flag
}

// Options — то, что передаёт вызывающий. Всё, кроме Object, необязательно.
type Options struct {
	Object           string
	CamelCase        Flag
	Locale           Flag
	DefaultLocale    *string // nil = "en", "" = без значения по умолчанию
	OmitCommonFields Flag
	OmitExtraFields  ExtraFields
	UniqueID         Flag

	UniqueValidator UniqueValidatorBundle
	ErrorTransform  ErrorTransformBundle
	Hidden          HiddenBundle

	// выставляется при разборе YAML, если object не строка
	objectNotString bool
}

// settings — опции после слияния с умолчаниями.
type settings struct {
	object           string
	camelCase        bool
	locale           bool
	defaultLocale    *string
	omitCommonFields bool
	omitExtraFields  ExtraFields
	uniqueID         bool

	uniqueEnabled bool
	unique        plugins.UniqueOptions
	errTransform  plugins.ErrorTransformOptions
	hidden        HiddenBundle
}

func defaults() settings {
	loc := DefaultLocale
	return settings{
		object:           "",
		camelCase:        false,
		locale:           true,
		defaultLocale:    &loc,
		omitCommonFields: true,
		omitExtraFields:  ExcludeList(),
		uniqueID:         true,

		uniqueEnabled: true,
		unique:        plugins.UniqueOptions{Message: plugins.DefaultUniqueMessage},
		errTransform:  plugins.ErrorTransformOptions{Capitalize: true, Humanize: true},
		hidden:        HiddenBundle{HideJSON: True, HideObject: True},
	}
}

// merge: заданное вызывающим побеждает, внутри пакетов по ключам.
func merge(o Options) settings {
	s := defaults()
	s.object = o.Object
	s.camelCase = o.CamelCase.Or(s.camelCase)
	s.locale = o.Locale.Or(s.locale)
	if o.DefaultLocale != nil {
		v := *o.DefaultLocale
		s.defaultLocale = &v
	}
	s.omitCommonFields = o.OmitCommonFields.Or(s.omitCommonFields)
	if o.OmitExtraFields.IsSet() {
		s.omitExtraFields = o.OmitExtraFields
	}
	s.uniqueID = o.UniqueID.Or(s.uniqueID)

	s.uniqueEnabled = !o.UniqueValidator.Disabled
	if strings.TrimSpace(o.UniqueValidator.Message) != "" {
		s.unique.Message = o.UniqueValidator.Message
	}

	s.errTransform.Capitalize = o.ErrorTransform.Capitalize.Or(s.errTransform.Capitalize)
	s.errTransform.Humanize = o.ErrorTransform.Humanize.Or(s.errTransform.Humanize)
	if o.ErrorTransform.Transform != nil {
		s.errTransform.Transform = o.ErrorTransform.Transform
	}

	if o.Hidden.Hidden != nil {
		s.hidden.Hidden = o.Hidden.Hidden
	}
	if o.Hidden.HideJSON.IsSet() {
		s.hidden.HideJSON = o.Hidden.HideJSON
	}
	if o.Hidden.HideObject.IsSet() {
		s.hidden.HideObject = o.Hidden.HideObject
	}
	return s
}
