package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/forensics-cli/internal/edgar"
	"github.com/sells-group/forensics-cli/internal/ingest"
	"github.com/sells-group/forensics-cli/internal/metrics"
	"github.com/sells-group/forensics-cli/internal/normalizer"
	"github.com/sells-group/forensics-cli/internal/orchestrator"
	"github.com/sells-group/forensics-cli/internal/store"
)

// analysisEnv holds the initialized store, pipeline and orchestrator shared
// by the serve/batch/jobs commands.
type analysisEnv struct {
	Store        store.Store
	Pipeline     *orchestrator.Pipeline
	Orchestrator *orchestrator.Orchestrator
}

func (e *analysisEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, the statement source and the orchestrator.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*analysisEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	p := &orchestrator.Pipeline{
		Client: edgar.NewClient(cfg.EDGAR),
		Engine: metrics.NewEngine(cfg.Anomaly),
	}

	return &analysisEnv{
		Store:        st,
		Pipeline:     p,
		Orchestrator: orchestrator.New(st, p, cfg.Orchestrator),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "forensics.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadStatementsFile reads raw statements from a JSON file for offline
// analysis. The payload is an array of {period, fields} objects using
// canonical field names.
func loadStatementsFile(path string) (ingest.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read statements file %s", path)
	}
	var raw []normalizer.RawStatement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "parse statements file %s", path)
	}
	return &ingest.Inline{Statements: raw}, nil
}
