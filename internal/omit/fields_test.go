package omit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTablesAreEquivalentForms(t *testing.T) {
	for _, tbl := range []Table{Underscored(), CamelCased()} {
		assert.Len(t, tbl.Select, len(tbl.Keys))
		parts := strings.Fields(tbl.Expr)
		assert.Len(t, parts, len(tbl.Keys))
		for i, k := range tbl.Keys {
			v, ok := tbl.Select[k]
			assert.True(t, ok, k)
			assert.False(t, v, k)
			assert.Equal(t, "-"+k, parts[i])
		}
	}
}

func TestForNamingConvention(t *testing.T) {
	camel := For(true)
	assert.True(t, camel.Has("resetToken"))
	assert.False(t, camel.Has("reset_token"))

	snake := For(false)
	assert.True(t, snake.Has("reset_token"))
	assert.False(t, snake.Has("resetToken"))
	assert.True(t, snake.Has("password"))
}

func TestForReturnsCopy(t *testing.T) {
	tbl := For(false)
	tbl.Select["password"] = true
	tbl.Keys[0] = "changed"

	again := For(false)
	assert.False(t, again.Select["password"])
	assert.Equal(t, "_id", again.Keys[0])
}
