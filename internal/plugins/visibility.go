package plugins

import "commonfields/internal/dsl"

// HiddenOptions — name -> скрыто. HideJSON / HideObject включают фильтр для каждого вида вывода.
type HiddenOptions struct {
	Hidden     map[string]bool
	HideJSON   bool
	HideObject bool
}

type hidden struct {
	opts HiddenOptions
}

func NewHidden(opts HiddenOptions) FieldVisibilityFilter {
	h := HiddenOptions{HideJSON: opts.HideJSON, HideObject: opts.HideObject, Hidden: map[string]bool{}}
	for k, v := range opts.Hidden {
		h.Hidden[k] = v
	}
	return &hidden{opts: h}
}

func (h *hidden) Filter(out map[string]any, mode Mode) {
	if mode == ModeJSON && !h.opts.HideJSON {
		return
	}
	if mode == ModeObject && !h.opts.HideObject {
		return
	}
	for k, hide := range h.opts.Hidden {
		if hide {
			delete(out, k)
		}
	}
}

type selector struct {
	terms dsl.SelectTerms
}

func NewSelector(sel dsl.Select) FieldSelector {
	return &selector{terms: sel.Terms()}
}

// Apply: +name всегда остаётся; при наличии «голых» имён остаются только они.
func (s *selector) Apply(out map[string]any) {
	t := s.terms
	for k := range out {
		if t.Force[k] {
			continue
		}
		if len(t.Include) > 0 && !t.Include[k] {
			delete(out, k)
			continue
		}
		if t.Exclude[k] {
			delete(out, k)
		}
	}
}
