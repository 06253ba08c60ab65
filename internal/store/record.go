package store

import (
	"time"
)

// Record — документ сущности. Реализует dsl.Document.
type Record struct {
	id        string
	entity    string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
	Data      map[string]any

	locals map[string]any // приватные атрибуты экземпляра, не сохраняются
	isNew  bool
}

func (r *Record) Identity() string { return r.id }
func (r *Record) Entity() string   { return r.entity }
func (r *Record) IsNew() bool      { return r.isNew }

func (r *Record) Get(field string) (any, bool) {
	v, ok := r.Data[field]
	return v, ok
}

func (r *Record) Set(field string, v any) {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[field] = v
}

func (r *Record) Local(key string) (any, bool) {
	v, ok := r.locals[key]
	return v, ok
}

func (r *Record) SetLocal(key string, v any) {
	if r.locals == nil {
		r.locals = map[string]any{}
	}
	r.locals[key] = v
}

// clone копирует сохраняемую часть; locals не переносятся.
func (r *Record) clone() *Record {
	cp := *r
	cp.locals = nil
	cp.Data = make(map[string]any, len(r.Data))
	for k, v := range r.Data {
		cp.Data[k] = v
	}
	return &cp
}
