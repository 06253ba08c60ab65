package pg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commonfields/internal/common"
	"commonfields/internal/dsl"
)

func decorated(t *testing.T, base *dsl.Entity, opts common.Options) *dsl.Entity {
	t.Helper()
	e, err := common.Decorate(base, opts)
	require.NoError(t, err)
	return e
}

func TestGenerateDDL_DecoratedEntity(t *testing.T) {
	user := decorated(t, &dsl.Entity{
		Module: "core",
		Name:   "User",
		Fields: []dsl.Field{
			{Name: "email", Type: "string", Options: map[string]string{"required": "true", "unique": "true"}},
			{Name: "role", Type: "enum", Enum: []string{"admin", "member"}, Options: map[string]string{"default": "member"}},
		},
	}, common.Options{Object: "user"})
	post := decorated(t, &dsl.Entity{
		Module:      "blog",
		Name:        "Post",
		Fields:      []dsl.Field{{Name: "author", Type: "ref", RefTarget: "core.User", Options: map[string]string{"on_delete": "set_null"}}},
		Constraints: dsl.Constraints{Unique: [][]string{{"author", "object"}}},
	}, common.Options{Object: "post", CamelCase: common.True})

	ddl, err := GenerateDDL(map[string]*dsl.Entity{user.FQN(): user, post.FQN(): post})
	require.NoError(t, err)

	main := ddl["000_schemas_and_tables"]
	assert.Contains(t, main, `create schema if not exists "core";`)
	assert.Contains(t, main, `create table if not exists "core"."users"`)
	assert.Contains(t, main, `"_id" text primary key`)
	assert.Contains(t, main, `"__v" bigint not null`)
	assert.Contains(t, main, `"created_at" timestamp with time zone not null`)
	assert.Contains(t, main, `"createdAt" timestamp with time zone not null`)
	assert.Contains(t, main, `"email" text not null`)
	assert.Contains(t, main, `"role" text null default 'member'`)
	assert.Contains(t, main, `create unique index if not exists "user_id_uq" on "core"."users"("id");`)
	assert.Contains(t, main, `create unique index if not exists "user_email_uq"`)
	assert.Contains(t, main, `create unique index if not exists "post_author_object_uq" on "blog"."posts"("author", "object");`)
	assert.Contains(t, main, `"object" text null`)

	fk := ddl["200_fk_post_author_fk"]
	assert.Equal(t,
		`alter table "blog"."posts" add constraint "post_author_fk" foreign key ("author") references "core"."users"("_id") on delete SET NULL;`,
		fk)
}

func TestGenerateDDL_IndexWithoutUnique(t *testing.T) {
	e := decorated(t, &dsl.Entity{Module: "blog", Name: "Tag"}, common.Options{Object: "tag", UniqueID: common.False})

	ddl, err := GenerateDDL(map[string]*dsl.Entity{e.FQN(): e})
	require.NoError(t, err)
	main := ddl["000_schemas_and_tables"]
	assert.Contains(t, main, `create index if not exists "tag_id_idx" on "blog"."tags"("id");`)
	assert.NotContains(t, main, "tag_id_uq")
}

func TestGenerateDDL_Errors(t *testing.T) {
	_, err := GenerateDDL(map[string]*dsl.Entity{
		"m.X": {Module: "m", Name: "X", Fields: []dsl.Field{{Name: "_id", Type: "string"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates")

	_, err = GenerateDDL(map[string]*dsl.Entity{
		"m.X": {Module: "m", Name: "X", Fields: []dsl.Field{{Name: "blob", Type: "binary"}}},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown type"))
}

func TestSafeTable(t *testing.T) {
	assert.Equal(t, "posts", safeTable("Post"))
	assert.Equal(t, "news", safeTable("News"))
	assert.Equal(t, "users", safeTable("User"))
	assert.Equal(t, "e_values", safeTable("Value"))
}
