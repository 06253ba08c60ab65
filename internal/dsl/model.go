package dsl

import "context"

// Entity описывает структуру сущности из DSL
type Entity struct {
	Module      string
	Name        string
	Fields      []Field
	Constraints Constraints

	// то, что навешивают плагины поверх DSL
	Virtuals      []Virtual
	Hooks         Hooks
	Serialization Serialization
	Timestamps    *Timestamps
	Plugins       []PluginRef
}

// Field описывает поле сущности
type Field struct {
	Name      string
	Type      string            // string, int, date, enum, ref и т.д.
	Enum      []string          // значения enum, если поле типа enum
	ElemType  string            // тип элемента для array[...]
	RefTarget string            // цель ссылки для ref[...] / array[ref[...]]
	Options   map[string]string // required, unique, index, trim, default и прочие опции
}

type Constraints struct {
	Unique [][]string // составные unique(a,b)
}

// Document — то, что хуки и виртуальные поля видят у записи.
type Document interface {
	// Identity — внутренний идентификатор, присваивается при создании документа.
	Identity() string
	Get(field string) (any, bool)
	Set(field string, v any)
	// приватные атрибуты экземпляра, не сохраняются
	Local(key string) (any, bool)
	SetLocal(key string, v any)
}

// Virtual — вычисляемое поле с геттером/сеттером.
type Virtual struct {
	Name string
	Get  func(d Document) any
	Set  func(d Document, v any)
}

type HookFunc func(ctx context.Context, d Document) error

type Hooks struct {
	PreSave []HookFunc
}

// Serialization — аналог toJSON/toObject. nil = «не задано».
type Serialization struct {
	Getters    *bool
	Virtuals   *bool
	VersionKey *bool
	Select     *Select
}

type Timestamps struct {
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// PluginRef — регистрация делегированного поведения по имени.
type PluginRef struct {
	Name    string
	Options any
}

// FQN = "module.name"
func (e *Entity) FQN() string { return e.Module + "." + e.Name }

// FieldByName возвращает поле и его индекс (-1, если нет).
func (e *Entity) FieldByName(name string) (Field, int) {
	for i, f := range e.Fields {
		if f.Name == name {
			return f, i
		}
	}
	return Field{}, -1
}

// AddField добавляет поле; поле с тем же именем заменяется.
func (e *Entity) AddField(f Field) {
	if f.Options == nil {
		f.Options = map[string]string{}
	}
	if _, i := e.FieldByName(f.Name); i >= 0 {
		e.Fields[i] = f
		return
	}
	e.Fields = append(e.Fields, f)
}

func (e *Entity) Virtual(v Virtual) {
	for i := range e.Virtuals {
		if e.Virtuals[i].Name == v.Name {
			e.Virtuals[i] = v
			return
		}
	}
	e.Virtuals = append(e.Virtuals, v)
}

func (e *Entity) VirtualByName(name string) (Virtual, bool) {
	for _, v := range e.Virtuals {
		if v.Name == name {
			return v, true
		}
	}
	return Virtual{}, false
}

func (e *Entity) PreSave(h HookFunc) { e.Hooks.PreSave = append(e.Hooks.PreSave, h) }

// SetSerialization кладёт s поверх текущих настроек: явно заданное в текущих побеждает.
func (e *Entity) SetSerialization(defaults Serialization) {
	cur := e.Serialization
	out := defaults
	if cur.Getters != nil {
		out.Getters = cur.Getters
	}
	if cur.Virtuals != nil {
		out.Virtuals = cur.Virtuals
	}
	if cur.VersionKey != nil {
		out.VersionKey = cur.VersionKey
	}
	if cur.Select != nil {
		out.Select = cur.Select
	}
	e.Serialization = out
}

func (e *Entity) SetTimestamps(t Timestamps) { e.Timestamps = &t }

func (e *Entity) Use(name string, opts any) {
	e.Plugins = append(e.Plugins, PluginRef{Name: name, Options: opts})
}

// Clone делает глубокую копию описания.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := &Entity{
		Module: e.Module,
		Name:   e.Name,
	}
	out.Fields = make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, f.clone())
	}
	for _, set := range e.Constraints.Unique {
		out.Constraints.Unique = append(out.Constraints.Unique, append([]string(nil), set...))
	}
	out.Virtuals = append([]Virtual(nil), e.Virtuals...)
	out.Hooks.PreSave = append([]HookFunc(nil), e.Hooks.PreSave...)
	out.Serialization = e.Serialization.clone()
	if e.Timestamps != nil {
		ts := *e.Timestamps
		out.Timestamps = &ts
	}
	out.Plugins = append([]PluginRef(nil), e.Plugins...)
	return out
}

func (f Field) clone() Field {
	out := f
	out.Enum = append([]string(nil), f.Enum...)
	if f.Options != nil {
		out.Options = make(map[string]string, len(f.Options))
		for k, v := range f.Options {
			out.Options[k] = v
		}
	}
	return out
}

func (s Serialization) clone() Serialization {
	out := Serialization{
		Getters:    copyBool(s.Getters),
		Virtuals:   copyBool(s.Virtuals),
		VersionKey: copyBool(s.VersionKey),
	}
	if s.Select != nil {
		sel := s.Select.Clone()
		out.Select = &sel
	}
	return out
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Bool возвращает указатель на литерал.
func Bool(v bool) *bool { return &v }
