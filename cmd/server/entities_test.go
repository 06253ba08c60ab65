package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"commonfields/internal/common"
	"commonfields/internal/config"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const blogDSL = `module blog

entity Post:
  title: string required
`

func TestLoadEntities(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dsl", "blog", "entities.dsl"), blogDSL)
	writeFile(t, filepath.Join(root, "options", "blog.yaml"), "entities:\n  blog.Post:\n    object: post\n")

	entities, err := loadEntities(config.Config{
		DSLDir:     filepath.Join(root, "dsl"),
		OptionsDir: filepath.Join(root, "options"),
	}, zap.NewNop())
	require.NoError(t, err)

	post := entities["blog.Post"]
	require.NotNil(t, post)
	_, idx := post.FieldByName("id")
	assert.GreaterOrEqual(t, idx, 0)
	assert.Len(t, post.Plugins, 4)
}

func TestLoadEntities_NoOptionsDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dsl", "blog", "entities.dsl"), blogDSL)

	entities, err := loadEntities(config.Config{
		DSLDir:     filepath.Join(root, "dsl"),
		OptionsDir: filepath.Join(root, "missing"),
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, entities["blog.Post"].Plugins)
}

func TestDecorateAll_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dsl", "blog", "entities.dsl"), blogDSL)
	cfg := config.Config{DSLDir: filepath.Join(root, "dsl"), OptionsDir: filepath.Join(root, "options")}

	writeFile(t, filepath.Join(root, "options", "a.yaml"), "entities:\n  blog.Missing:\n    object: x\n")
	_, err := loadEntities(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity blog.Missing")

	writeFile(t, filepath.Join(root, "options", "a.yaml"), "entities:\n  blog.Post:\n    locale: false\n")
	_, err = loadEntities(cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}
