// Package plugins — делегированные поведения, которые схема подключает по имени:
// проверка уникальности, нормализация ошибок, скрытие полей и выборка полей при сериализации.
package plugins

import (
	"fmt"
	"sort"
	"sync"

	"commonfields/internal/dsl"
)

const (
	NameUniqueValidator = "unique-validator"
	NameErrorTransform  = "error-transform"
	NameHidden          = "hidden"
	NameJSONSelect      = "json-select"
)

// Mode — в какой вид сериализуем документ.
type Mode int

const (
	ModeJSON Mode = iota
	ModeObject
)

// Peers — уже сохранённые документы той же сущности.
type Peers interface {
	Each(fn func(d dsl.Document) bool)
}

type UniquenessChecker interface {
	CheckUnique(e *dsl.Entity, d dsl.Document, peers Peers) []FieldError
}

type ErrorNormalizer interface {
	Normalize(errs []FieldError) *ValidationError
}

type FieldVisibilityFilter interface {
	Filter(out map[string]any, mode Mode)
}

type FieldSelector interface {
	Apply(out map[string]any)
}

// Set — поведения, разрешённые для одной сущности. nil = не подключено.
type Set struct {
	Unique   UniquenessChecker
	Errors   ErrorNormalizer
	Hidden   FieldVisibilityFilter
	Selector FieldSelector
}

// Factory строит поведение из пакета опций.
type Factory func(opts any) (any, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Default — реестр со встроенными поведениями.
func Default() *Registry {
	r := NewRegistry()
	r.Register(NameUniqueValidator, func(opts any) (any, error) {
		o, ok := opts.(UniqueOptions)
		if !ok && opts != nil {
			return nil, fmt.Errorf("%s: unexpected options %T", NameUniqueValidator, opts)
		}
		return NewUniqueValidator(o), nil
	})
	r.Register(NameErrorTransform, func(opts any) (any, error) {
		o, ok := opts.(ErrorTransformOptions)
		if !ok && opts != nil {
			return nil, fmt.Errorf("%s: unexpected options %T", NameErrorTransform, opts)
		}
		return NewErrorTransform(o), nil
	})
	r.Register(NameHidden, func(opts any) (any, error) {
		o, ok := opts.(HiddenOptions)
		if !ok && opts != nil {
			return nil, fmt.Errorf("%s: unexpected options %T", NameHidden, opts)
		}
		return NewHidden(o), nil
	})
	r.Register(NameJSONSelect, func(opts any) (any, error) {
		switch o := opts.(type) {
		case dsl.Select:
			return NewSelector(o), nil
		case *dsl.Select:
			if o == nil {
				return NewSelector(dsl.Select{}), nil
			}
			return NewSelector(*o), nil
		case nil:
			return NewSelector(dsl.Select{}), nil
		default:
			return nil, fmt.Errorf("%s: unexpected options %T", NameJSONSelect, opts)
		}
	})
	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve превращает регистрации сущности в набор поведений.
// Повторная регистрация того же вида заменяет предыдущую.
func (r *Registry) Resolve(refs []dsl.PluginRef) (Set, error) {
	var set Set
	for _, ref := range refs {
		r.mu.RLock()
		f, ok := r.factories[ref.Name]
		r.mu.RUnlock()
		if !ok {
			return Set{}, fmt.Errorf("unknown plugin %q", ref.Name)
		}
		b, err := f(ref.Options)
		if err != nil {
			return Set{}, err
		}
		matched := false
		if v, ok := b.(UniquenessChecker); ok {
			set.Unique, matched = v, true
		}
		if v, ok := b.(ErrorNormalizer); ok {
			set.Errors, matched = v, true
		}
		if v, ok := b.(FieldVisibilityFilter); ok {
			set.Hidden, matched = v, true
		}
		if v, ok := b.(FieldSelector); ok {
			set.Selector, matched = v, true
		}
		if !matched {
			return Set{}, fmt.Errorf("plugin %q provides no known behavior (%T)", ref.Name, b)
		}
	}
	return set, nil
}
