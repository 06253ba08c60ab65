// Package reference читает справочники из YAML: опции общих полей по сущностям.
package reference

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"commonfields/internal/common"
)

// OptionsFile — один YAML-файл каталога:
//
//	entities:
//	  blog.Post:
//	    object: post
//	    omitExtraFields: [draft_notes]
type OptionsFile struct {
	Entities map[string]common.Options `yaml:"entities"`
}

// LoadOptionsCatalog читает все *.yaml / *.yml из dir. Ключ: FQN сущности.
// Одна сущность в двух файлах даёт ошибку.
func LoadOptionsCatalog(dir string) (map[string]common.Options, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if !file.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	result := make(map[string]common.Options)
	origin := make(map[string]string)
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var f OptionsFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for fqn, opts := range f.Entities {
			fqn = strings.TrimSpace(fqn)
			if !strings.Contains(fqn, ".") {
				return nil, fmt.Errorf("%s: entity %q must be module.Name", path, fqn)
			}
			if prev, dup := origin[fqn]; dup {
				return nil, fmt.Errorf("duplicate options for %s in %s and %s", fqn, prev, path)
			}
			origin[fqn] = path
			result[fqn] = opts
		}
	}
	return result, nil
}
