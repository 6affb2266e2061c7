package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/store"
)

// initStore opens the configured backend and applies its schema.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = openSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = openPostgres(ctx)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func openSQLite(dsn string) (store.Store, error) {
	if dsn == "" {
		dsn = "attribution.db"
	}
	s, err := store.NewSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context) (store.Store, error) {
	s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	if err != nil {
		return nil, err
	}
	return s, nil
}
