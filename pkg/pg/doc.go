// Package pg bootstraps the PostgreSQL layer on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool with retries, Migrate applies goose
// migrations (embedded or from disk) through the same pool, and Healthcheck
// exposes a ping closure for readiness checks.
//
// Stores take a DBTX so a query can run against the pool or inside a
// transaction. Transactor implements the InTx contract used by the task
// runner: one transaction per sequence, committed when every step succeeds
// and rolled back on the first error, which is returned unchanged.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
//	runner := task.NewRunner(pg.NewTransactor(pool))
//
// Helpers such as IsNotFoundError and IsDuplicateKeyError classify pgx errors.
package pg
