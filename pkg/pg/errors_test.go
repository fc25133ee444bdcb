package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestortareas/gestor/pkg/pg"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	foreign := &pgconn.PgError{Code: "23503", ConstraintName: "refresh_tokens_user_id_fkey"}

	tests := []struct {
		name       string
		err        error
		notFound   bool
		duplicate  bool
		foreignKey bool
		constraint string
	}{
		{name: "nil"},
		{name: "plain error", err: errors.New("boom")},
		{name: "no rows", err: fmt.Errorf("query: %w", pgx.ErrNoRows), notFound: true},
		{name: "unique violation", err: fmt.Errorf("insert: %w", unique), duplicate: true, constraint: "users_email_key"},
		{name: "foreign key violation", err: foreign, foreignKey: true, constraint: "refresh_tokens_user_id_fkey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, pg.IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, pg.IsDuplicateKeyError(tt.err))
			assert.Equal(t, tt.foreignKey, pg.IsForeignKeyViolationError(tt.err))
			assert.Equal(t, tt.constraint, pg.ConstraintName(tt.err))
		})
	}
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigrate_InputValidation(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(context.Background(), nil, nil, pg.Config{}, nil)
	require.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
	assert.ErrorIs(t, err, pg.ErrMigrationsNotProvided)

	fsys := fstest.MapFS{"migrations/00001_init.sql": {Data: []byte("-- +goose Up\n")}}
	err = pg.Migrate(context.Background(), nil, fsys, pg.Config{MigrationsDir: "elsewhere"}, nil)
	assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)
}
