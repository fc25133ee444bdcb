// Package pg bootstraps PostgreSQL access on pgx/v5: a pooled connection with
// startup retries, goose migrations run from an embedded filesystem, a
// readiness check and helpers that classify driver errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, cfg, log); err != nil {
//		return err
//	}
//
// Storage packages translate driver errors with IsNotFoundError,
// IsDuplicateKeyError and IsForeignKeyViolationError instead of inspecting
// pgconn error codes themselves.
package pg
