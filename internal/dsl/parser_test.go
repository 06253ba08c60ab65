package dsl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogDSL = `
module blog

# посты
entity Post:
  title: string required
  status: enum[draft, published] default=draft
  author: ref[core.User] on_delete=restrict
  tags: array[string]
  password: string
  constraints:
    unique(title, author)

entity Comment:
  body: string options: required, pattern='^[a-z ]+$'
  post: ref[Post]
`

func TestParse(t *testing.T) {
	ents, err := Parse(strings.NewReader(blogDSL))
	require.NoError(t, err)
	require.Len(t, ents, 2)

	post := ents[0]
	assert.Equal(t, "blog", post.Module)
	assert.Equal(t, "Post", post.Name)
	assert.Equal(t, "blog.Post", post.FQN())
	require.Len(t, post.Fields, 5)

	title, _ := post.FieldByName("title")
	assert.Equal(t, "string", title.Type)
	assert.Equal(t, "true", title.Options["required"])

	status, _ := post.FieldByName("status")
	assert.Equal(t, "enum", status.Type)
	assert.Equal(t, []string{"draft", "published"}, status.Enum)
	assert.Equal(t, "draft", status.Options["default"])

	author, _ := post.FieldByName("author")
	assert.Equal(t, "ref", author.Type)
	assert.Equal(t, "core.User", author.RefTarget)

	tags, _ := post.FieldByName("tags")
	assert.Equal(t, "array", tags.Type)
	assert.Equal(t, "string", tags.ElemType)

	assert.Equal(t, [][]string{{"title", "author"}}, post.Constraints.Unique)

	comment := ents[1]
	body, _ := comment.FieldByName("body")
	assert.Equal(t, "^[a-z ]+$", body.Options["pattern"])
	assert.Equal(t, "true", body.Options["required"])
}

func TestLoadAllEntities(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.dsl"), []byte(blogDSL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("entity Skip:"), 0o644))

	all, err := LoadAllEntities(dir)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, all, "blog.Post")
	assert.Contains(t, all, "blog.Comment")
}

func TestLoadAllEntities_NoModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.dsl"), []byte("entity Lost:\n  a: string\n"), 0o644))

	_, err := LoadAllEntities(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no module")
}

func TestLoadAllEntities_Duplicate(t *testing.T) {
	dir := t.TempDir()
	src := "module m\nentity A:\n  x: string\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dsl"), []byte(src), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.dsl"), []byte(src), 0o644))

	_, err := LoadAllEntities(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entity")
}
