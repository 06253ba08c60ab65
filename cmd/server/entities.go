package main

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	"commonfields/internal/common"
	"commonfields/internal/config"
	"commonfields/internal/dsl"
	"commonfields/internal/reference"
)

// loadEntities читает DSL и навешивает общие поля на сущности, у которых есть опции в каталоге.
// Опции для несуществующей сущности и ошибка конфигурации останавливают запуск.
func loadEntities(cfg config.Config, log *zap.Logger) (map[string]*dsl.Entity, error) {
	entities, err := dsl.LoadAllEntities(cfg.DSLDir)
	if err != nil {
		return nil, fmt.Errorf("load dsl: %w", err)
	}

	catalog, err := reference.LoadOptionsCatalog(cfg.OptionsDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("options directory not found, entities stay undecorated", zap.String("dir", cfg.OptionsDir))
		catalog = nil
	case err != nil:
		return nil, fmt.Errorf("load options: %w", err)
	}

	return decorateAll(entities, catalog, log)
}

func decorateAll(entities map[string]*dsl.Entity, catalog map[string]common.Options, log *zap.Logger) (map[string]*dsl.Entity, error) {
	keys := make([]string, 0, len(catalog))
	for fqn := range catalog {
		keys = append(keys, fqn)
	}
	sort.Strings(keys)

	out := make(map[string]*dsl.Entity, len(entities))
	for fqn, e := range entities {
		out[fqn] = e
	}
	for _, fqn := range keys {
		base, ok := entities[fqn]
		if !ok {
			return nil, fmt.Errorf("options for unknown entity %s", fqn)
		}
		decorated, err := common.Decorate(base, catalog[fqn])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fqn, err)
		}
		out[fqn] = decorated
	}
	log.Info("entities loaded", zap.Int("total", len(out)), zap.Int("decorated", len(keys)))
	return out, nil
}
