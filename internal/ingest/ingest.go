// Package ingest defines the contract statement sources implement. The
// orchestrator's ingestion stage only sees this interface; concrete clients
// (SEC EDGAR, inline request payloads) live in their own packages.
package ingest

import (
	"context"
	"errors"

	"github.com/sells-group/forensics-cli/internal/normalizer"
)

// ErrSourceUnavailable signals that the upstream source could not serve the
// request at all (outage, breaker open, exhausted retries). The job stage
// fails with this rather than returning partial data.
var ErrSourceUnavailable = errors.New("ingest: statement source unavailable")

// ErrCompanyNotFound signals that the source has no filings for the company.
var ErrCompanyNotFound = errors.New("ingest: company not found")

// Client fetches raw financial statements for a company over a set of
// fiscal periods.
type Client interface {
	// Source names the client for logging and provenance.
	Source() string

	// FetchStatements returns raw statements for up to `periods` most
	// recent annual periods, newest first.
	FetchStatements(ctx context.Context, companyID string, periods int) ([]normalizer.RawStatement, error)
}

// Inline wraps statements supplied directly in an analysis request so the
// pipeline treats them like any other source.
type Inline struct {
	Statements []normalizer.RawStatement
}

func (i *Inline) Source() string { return normalizer.SourceGeneric }

func (i *Inline) FetchStatements(_ context.Context, _ string, periods int) ([]normalizer.RawStatement, error) {
	if len(i.Statements) == 0 {
		return nil, ErrCompanyNotFound
	}
	out := i.Statements
	if periods > 0 && len(out) > periods {
		out = out[:periods]
	}
	return out, nil
}
