package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"commonfields/internal/dsl"
	"commonfields/internal/plugins"
)

var (
	ErrUnknownEntity   = errors.New("entity not found")
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("version conflict")
)

type Storage struct {
	mu      sync.RWMutex
	Schemas map[string]*dsl.Entity        // FQN ("module.name") -> схема
	Data    map[string]map[string]*Record // FQN -> id -> запись

	behaviors map[string]plugins.Set
	fallback  plugins.ErrorNormalizer

	idMu    sync.Mutex
	entropy io.Reader
	now     func() time.Time
	log     *zap.Logger
}

// New поднимает хранилище; плагины каждой схемы разрешаются через reg сразу.
func New(entities map[string]*dsl.Entity, reg *plugins.Registry, log *zap.Logger) (*Storage, error) {
	if reg == nil {
		reg = plugins.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Storage{
		Schemas:   make(map[string]*dsl.Entity, len(entities)),
		Data:      make(map[string]map[string]*Record),
		behaviors: make(map[string]plugins.Set, len(entities)),
		fallback:  plugins.NewErrorTransform(plugins.ErrorTransformOptions{}),
		entropy:   ulid.Monotonic(src, 0),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
	for fqn, e := range entities {
		set, err := reg.Resolve(e.Plugins)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fqn, err)
		}
		s.Schemas[fqn] = e
		s.behaviors[fqn] = set
	}
	return s, nil
}

func (s *Storage) newID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// NewDocument создаёт документ с уже присвоенным идентификатором.
// Ключи data, совпадающие с виртуальными полями, уходят в их сеттеры.
func (s *Storage) NewDocument(fqn string, data map[string]any) (*Record, error) {
	schema, ok := s.Schemas[fqn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, fqn)
	}
	rec := &Record{
		id:     s.newID(),
		entity: fqn,
		Data:   make(map[string]any, len(data)),
		isNew:  true,
	}
	Assign(schema, rec, data)
	return rec, nil
}

// Assign раскладывает data по полям и виртуальным сеттерам.
func Assign(schema *dsl.Entity, rec *Record, data map[string]any) {
	for k, v := range data {
		if vf, ok := schema.VirtualByName(k); ok {
			if vf.Set != nil {
				vf.Set(rec, v)
			}
			continue
		}
		rec.Set(k, v)
	}
}

// Save: хуки перед сохранением → нормализация → валидация → запись.
func (s *Storage) Save(ctx context.Context, rec *Record) error {
	schema, ok := s.Schemas[rec.entity]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, rec.entity)
	}
	set := s.behaviors[rec.entity]

	for _, h := range schema.Hooks.PreSave {
		if err := h(ctx, rec); err != nil {
			return fmt.Errorf("pre-save %s: %w", rec.entity, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.isNew {
		applyDefaults(schema, rec)
	}
	applyTrim(schema, rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	errs := s.validate(schema, rec)
	if set.Unique != nil {
		errs = append(errs, set.Unique.CheckUnique(schema, rec, s.peersLocked(rec.entity))...)
	}
	if len(errs) > 0 {
		normalizer := set.Errors
		if normalizer == nil {
			normalizer = s.fallback
		}
		return normalizer.Normalize(errs)
	}

	now := s.now()
	byID := s.Data[rec.entity]
	if byID == nil {
		byID = make(map[string]*Record)
		s.Data[rec.entity] = byID
	}

	if rec.isNew {
		if _, exists := byID[rec.id]; exists {
			return fmt.Errorf("%w: %s already saved", ErrVersionConflict, rec.id)
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		rec.Version = 1
	} else {
		cur := byID[rec.id]
		if cur == nil || cur.Deleted {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, rec.entity, rec.id)
		}
		if cur.Version != rec.Version {
			return fmt.Errorf("%w: expected version %d", ErrVersionConflict, cur.Version)
		}
		rec.CreatedAt = cur.CreatedAt
		rec.UpdatedAt = now
		rec.Version++
	}
	rec.isNew = false
	byID[rec.id] = rec.clone()

	s.log.Debug("document saved",
		zap.String("entity", rec.entity),
		zap.String("id", rec.id),
		zap.Int64("version", rec.Version),
	)
	return nil
}

// Get возвращает копию живой записи.
func (s *Storage) Get(fqn, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.Schemas[fqn]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, fqn)
	}
	rec := s.Data[fqn][id]
	if rec == nil || rec.Deleted {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, fqn, id)
	}
	return rec.clone(), nil
}

// List — живые записи в порядке создания.
func (s *Storage) List(fqn string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.Schemas[fqn]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, fqn)
	}
	out := make([]*Record, 0, len(s.Data[fqn]))
	for _, r := range s.Data[fqn] {
		if !r.Deleted {
			out = append(out, r.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

// Delete — мягкое удаление.
func (s *Storage) Delete(fqn, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.Data[fqn][id]
	if rec == nil || rec.Deleted {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, fqn, id)
	}
	rec.Deleted = true
	rec.UpdatedAt = s.now()
	rec.Version++
	s.log.Debug("document deleted", zap.String("entity", fqn), zap.String("id", id))
	return nil
}

func (s *Storage) Exists(fqn, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.existsLocked(fqn, id)
}

func (s *Storage) existsLocked(fqn, id string) bool {
	rec := s.Data[fqn][id]
	return rec != nil && !rec.Deleted
}

type peers []*Record

func (p peers) Each(fn func(d dsl.Document) bool) {
	for _, r := range p {
		if !fn(r) {
			return
		}
	}
}

func (s *Storage) peersLocked(fqn string) plugins.Peers {
	out := make(peers, 0, len(s.Data[fqn]))
	for _, r := range s.Data[fqn] {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out
}

// applyDefaults: default=... из DSL для отсутствующих полей; тип приведёт validate.
func applyDefaults(schema *dsl.Entity, rec *Record) {
	for _, f := range schema.Fields {
		dv, ok := f.Options["default"]
		if !ok {
			continue
		}
		if v, exists := rec.Data[f.Name]; !exists || v == nil {
			rec.Data[f.Name] = dv
		}
	}
}

func applyTrim(schema *dsl.Entity, rec *Record) {
	for _, f := range schema.Fields {
		if !strings.EqualFold(f.Options["trim"], "true") {
			continue
		}
		if v, ok := rec.Data[f.Name].(string); ok {
			rec.Data[f.Name] = strings.TrimSpace(v)
		}
	}
}
