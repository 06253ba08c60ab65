//go:build integration

package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"commonfields/internal/common"
	"commonfields/internal/dsl"
)

func TestApplyDDL_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("commonfields"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	user, err := common.Decorate(&dsl.Entity{
		Module: "core",
		Name:   "User",
		Fields: []dsl.Field{{Name: "email", Type: "string", Options: map[string]string{"unique": "true"}}},
	}, common.Options{Object: "user"})
	require.NoError(t, err)
	post, err := common.Decorate(&dsl.Entity{
		Module: "blog",
		Name:   "Post",
		Fields: []dsl.Field{{Name: "author", Type: "ref", RefTarget: "core.User"}},
	}, common.Options{Object: "post", CamelCase: common.True})
	require.NoError(t, err)

	ddl, err := GenerateDDL(map[string]*dsl.Entity{user.FQN(): user, post.FQN(): post})
	require.NoError(t, err)

	require.NoError(t, ApplyDDL(ctx, db, ddl))
	// повторно: всё уже есть, FK даёт duplicate_object и пропускается
	require.NoError(t, ApplyDDL(ctx, db, ddl))

	_, err = db.ExecContext(ctx,
		`insert into "core"."users" ("_id", "__v", "created_at", "updated_at", "id", "object", "email")
		 values ('u1', 1, now(), now(), 'u1', 'user', 'a@b.c')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`insert into "core"."users" ("_id", "__v", "created_at", "updated_at", "id", "object", "email")
		 values ('u2', 1, now(), now(), 'u2', 'user', 'a@b.c')`)
	assert.Error(t, err, "unique email")

	_, err = db.ExecContext(ctx,
		`insert into "blog"."posts" ("_id", "__v", "createdAt", "updatedAt", "id", "object", "author")
		 values ('p1', 1, now(), now(), 'p1', 'post', 'missing')`)
	assert.Error(t, err, "foreign key")
}
