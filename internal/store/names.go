package store

import "strings"

// NormalizeEntityName возвращает FQN ("module.name") по паре {module, entity}.
// Если module пустой, ищет уникальную сущность с таким именем среди всех модулей.
func (s *Storage) NormalizeEntityName(module, name string) (string, bool) {
	name = strings.TrimSpace(name)
	module = strings.TrimSpace(module)
	if name == "" {
		return "", false
	}

	if module != "" {
		if _, ok := s.Schemas[module+"."+name]; ok {
			return module + "." + name, true
		}
		for fqn := range s.Schemas {
			fm, fn := SplitFQN(fqn)
			if strings.EqualFold(fm, module) && strings.EqualFold(fn, name) {
				return fqn, true
			}
		}
		return "", false
	}

	// модуля нет, имя должно быть уникальным
	var found string
	for fqn := range s.Schemas {
		if _, fn := SplitFQN(fqn); strings.EqualFold(fn, name) {
			if found != "" {
				return "", false
			}
			found = fqn
		}
	}
	return found, found != ""
}

// resolveRef: "module.Entity" или "Entity" (только если имя уникально)
func (s *Storage) resolveRef(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i > 0 {
		return s.NormalizeEntityName(raw[:i], raw[i+1:])
	}
	return s.NormalizeEntityName("", raw)
}

// SplitFQN("module.entity") -> ("module","entity")
func SplitFQN(fqn string) (string, string) {
	i := strings.IndexByte(fqn, '.')
	if i <= 0 || i >= len(fqn)-1 {
		return "", fqn
	}
	return fqn[:i], fqn[i+1:]
}
