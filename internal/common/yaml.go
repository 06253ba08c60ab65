package common

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func (f *Flag) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected true/false", n.Line)
	}
	var v any = n.Value
	if n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		v = b
	}
	parsed, ok := ParseFlag(v)
	if !ok {
		return fmt.Errorf("line %d: %q is not a boolean (true/false)", n.Line, n.Value)
	}
	*f = parsed
	return nil
}

// UnmarshalYAML: список -> ExcludeList, маппинг -> VisibilityMap, всё прочее -> NoExtraFields.
func (x *ExtraFields) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return err
		}
		*x = ExcludeList(names...)
	case yaml.MappingNode:
		var raw map[string]Flag
		if err := n.Decode(&raw); err != nil {
			return err
		}
		m := make(map[string]bool, len(raw))
		for k, f := range raw {
			m[k] = f.Or(false)
		}
		*x = VisibilityMap(m)
	default:
		*x = NoExtraFields()
	}
	return nil
}

// UnmarshalYAML: false -> выключено, маппинг -> {message}.
func (b *UniqueValidatorBundle) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var f Flag
		if err := f.UnmarshalYAML(n); err != nil {
			return err
		}
		*b = UniqueValidatorBundle{Disabled: !f.Or(true)}
		return nil
	}
	var raw struct {
		Message string `yaml:"message"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*b = UniqueValidatorBundle{Message: raw.Message}
	return nil
}

type errorTransformYAML struct {
	Capitalize Flag `yaml:"capitalize"`
	Humanize   Flag `yaml:"humanize"`
}

type hiddenYAML struct {
	Hidden     map[string]Flag `yaml:"hidden"`
	HideJSON   Flag            `yaml:"hideJSON"`
	HideObject Flag            `yaml:"hideObject"`
}

type optionsYAML struct {
	Object           yaml.Node             `yaml:"object"`
	CamelCase        Flag                  `yaml:"camelCase"`
	Locale           Flag                  `yaml:"locale"`
	DefaultLocale    *string               `yaml:"defaultLocale"`
	OmitCommonFields Flag                  `yaml:"omitCommonFields"`
	OmitExtraFields  ExtraFields           `yaml:"omitExtraFields"`
	UniqueID         Flag                  `yaml:"uniqueId"`
	UniqueValidator  UniqueValidatorBundle `yaml:"uniqueValidator"`
	ErrorTransform   errorTransformYAML    `yaml:"errorTransform"`
	Hidden           hiddenYAML            `yaml:"hidden"`
}

// UnmarshalYAML разбирает опции декоратора. Нестроковый object не ошибка разбора:
// его отвергает Decorate с ConfigurationError.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var raw optionsYAML
	if err := n.Decode(&raw); err != nil {
		return err
	}
	out := Options{
		CamelCase:        raw.CamelCase,
		Locale:           raw.Locale,
		DefaultLocale:    raw.DefaultLocale,
		OmitCommonFields: raw.OmitCommonFields,
		OmitExtraFields:  raw.OmitExtraFields,
		UniqueID:         raw.UniqueID,
		UniqueValidator:  raw.UniqueValidator,
		ErrorTransform: ErrorTransformBundle{
			Capitalize: raw.ErrorTransform.Capitalize,
			Humanize:   raw.ErrorTransform.Humanize,
		},
		Hidden: HiddenBundle{
			HideJSON:   raw.Hidden.HideJSON,
			HideObject: raw.Hidden.HideObject,
		},
	}
	if raw.Hidden.Hidden != nil {
		out.Hidden.Hidden = make(map[string]bool, len(raw.Hidden.Hidden))
		for k, f := range raw.Hidden.Hidden {
			out.Hidden.Hidden[k] = f.Or(false)
		}
	}

	switch {
	case raw.Object.Kind == 0:
		// не задан
	case raw.Object.Kind == yaml.ScalarNode && raw.Object.Tag == "!!str":
		out.Object = raw.Object.Value
	default:
		out.Object = raw.Object.Value
		out.objectNotString = true
	}

	*o = out
	return nil
}
