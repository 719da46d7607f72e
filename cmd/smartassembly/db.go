package main

import (
	"context"

	"smartassembly/internal/config"
	"smartassembly/internal/store"
	"smartassembly/internal/store/postgres"
	"smartassembly/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Backend, error) {
	if sqlite.IsDSN(cfg.Database.DSN) {
		return sqlite.New(ctx, cfg.Database.DSN)
	}
	return postgres.New(ctx, cfg.Database.DSN)
}
