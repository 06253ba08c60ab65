package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	base := &Entity{
		Module: "m",
		Name:   "A",
		Fields: []Field{{Name: "title", Type: "string", Options: map[string]string{"required": "true"}}},
		Serialization: Serialization{
			Getters: Bool(false),
		},
	}
	sel := SelectMap(map[string]bool{"a": false})
	base.Serialization.Select = &sel

	cp := base.Clone()
	cp.AddField(Field{Name: "id", Type: "string"})
	cp.Fields[0].Options["required"] = "false"
	*cp.Serialization.Getters = true
	cp.Serialization.Select.Fields["a"] = true
	cp.PreSave(nil)

	assert.Len(t, base.Fields, 1)
	assert.Equal(t, "true", base.Fields[0].Options["required"])
	assert.False(t, *base.Serialization.Getters)
	assert.False(t, base.Serialization.Select.Fields["a"])
	assert.Empty(t, base.Hooks.PreSave)
}

func TestAddFieldReplaces(t *testing.T) {
	e := &Entity{Fields: []Field{{Name: "id", Type: "int"}}}
	e.AddField(Field{Name: "id", Type: "string"})

	require.Len(t, e.Fields, 1)
	assert.Equal(t, "string", e.Fields[0].Type)
	assert.NotNil(t, e.Fields[0].Options)
}

func TestSetSerializationExplicitWins(t *testing.T) {
	e := &Entity{Serialization: Serialization{VersionKey: Bool(true)}}
	sel := SelectExpr("-password")
	e.SetSerialization(Serialization{
		Getters:    Bool(true),
		Virtuals:   Bool(true),
		VersionKey: Bool(false),
		Select:     &sel,
	})

	assert.True(t, *e.Serialization.Getters)
	assert.True(t, *e.Serialization.VersionKey)
	assert.Equal(t, "-password", e.Serialization.Select.Expr)
}

func TestSelectTerms(t *testing.T) {
	terms := SelectExpr("-password +hide title -").Terms()
	assert.Equal(t, map[string]bool{"password": true}, terms.Exclude)
	assert.Equal(t, map[string]bool{"hide": true}, terms.Force)
	assert.Equal(t, map[string]bool{"title": true}, terms.Include)

	mterms := SelectMap(map[string]bool{"title": true, "test": false}).Terms()
	assert.Equal(t, map[string]bool{"test": true}, mterms.Exclude)
	assert.Equal(t, map[string]bool{"title": true}, mterms.Force)
	assert.Empty(t, mterms.Include)
}

func TestSelectString(t *testing.T) {
	assert.Equal(t, "+a -b", SelectMap(map[string]bool{"b": false, "a": true}).String())
	assert.Equal(t, "-x", SelectExpr("  -x ").String())
	assert.True(t, SelectExpr("").IsEmpty())
	assert.True(t, SelectMap(nil).IsMap())
}
