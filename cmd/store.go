package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/llmstxt/internal/store"
)

// initStore opens and migrates the run ledger configured by store.path.
func initStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, eris.New("store path is required (INPUT_STORE_PATH)")
	}
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
