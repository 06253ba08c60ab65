package plugins

import (
	"fmt"
	"strings"

	"commonfields/internal/dsl"
)

const DefaultUniqueMessage = "Path `{PATH}` ({VALUE}) is not unique."

type UniqueOptions struct {
	// Message поддерживает подстановки {PATH} и {VALUE}
	Message string
}

type uniqueValidator struct {
	msg string
}

func NewUniqueValidator(opts UniqueOptions) UniquenessChecker {
	msg := opts.Message
	if strings.TrimSpace(msg) == "" {
		msg = DefaultUniqueMessage
	}
	return &uniqueValidator{msg: msg}
}

// CheckUnique проверяет unique-поля и составные unique(...) против peers.
// Сам документ (по Identity) из сравнения исключается; отсутствующие значения не проверяются.
func (u *uniqueValidator) CheckUnique(e *dsl.Entity, d dsl.Document, peers Peers) []FieldError {
	var errs []FieldError

	for _, f := range e.Fields {
		if !strings.EqualFold(f.Options["unique"], "true") {
			continue
		}
		v, ok := d.Get(f.Name)
		if !ok || v == nil {
			continue
		}
		needle := fmt.Sprintf("%v", v)
		if u.taken(d, peers, []string{f.Name}, []string{needle}) {
			errs = append(errs, Ferr(ErrUniqueViolation, f.Name, u.format(f.Name, needle)))
		}
	}

	for _, set := range e.Constraints.Unique {
		if len(set) == 0 {
			continue
		}
		key := make([]string, len(set))
		all := true
		for i, name := range set {
			v, ok := d.Get(name)
			if !ok || v == nil {
				all = false
				break
			}
			key[i] = fmt.Sprintf("%v", v)
		}
		if !all {
			continue
		}
		if u.taken(d, peers, set, key) {
			errs = append(errs, Ferr(ErrUniqueViolation, set[0],
				u.format(strings.Join(set, ", "), strings.Join(key, ", "))))
		}
	}
	return errs
}

func (u *uniqueValidator) taken(d dsl.Document, peers Peers, fields, values []string) bool {
	found := false
	peers.Each(func(p dsl.Document) bool {
		if p.Identity() == d.Identity() {
			return true
		}
		for i, name := range fields {
			v, ok := p.Get(name)
			if !ok || fmt.Sprintf("%v", v) != values[i] {
				return true
			}
		}
		found = true
		return false
	})
	return found
}

func (u *uniqueValidator) format(path, value string) string {
	return strings.NewReplacer("{PATH}", path, "{VALUE}", value).Replace(u.msg)
}
