// Package edgar fetches company financials from the SEC's XBRL companyfacts
// API and flattens them into raw statements keyed by us-gaap concept tag.
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/forensics-cli/internal/config"
	"github.com/sells-group/forensics-cli/internal/ingest"
	"github.com/sells-group/forensics-cli/internal/normalizer"
	"github.com/sells-group/forensics-cli/internal/resilience"
)

// Client talks to data.sec.gov. The SEC enforces a hard request rate and
// requires an identifying User-Agent; both are handled here so callers can
// treat it like any other statement source.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
	retry     resilience.RetryConfig
	log       *zap.Logger
}

func NewClient(cfg config.EDGARConfig) *Client {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 8
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://data.sec.gov"
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "sells-group forensics-cli research@sells-group.com"
	}
	return &Client{
		baseURL:   base,
		userAgent: ua,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   resilience.NewCircuitBreaker("edgar", 5, 30*time.Second),
		retry:     resilience.DefaultRetryConfig(),
		log:       zap.L().With(zap.String("source", "edgar")),
	}
}

func (c *Client) Source() string { return normalizer.SourceEDGAR }

// companyFacts mirrors the subset of the companyfacts payload we read.
type companyFacts struct {
	CIK        int64  `json:"cik"`
	EntityName string `json:"entityName"`
	Facts      struct {
		USGAAP map[string]concept `json:"us-gaap"`
		DEI    map[string]concept `json:"dei"`
	} `json:"facts"`
}

type concept struct {
	Units map[string][]fact `json:"units"`
}

type fact struct {
	End  string      `json:"end"`
	Val  json.Number `json:"val"`
	FY   int         `json:"fy"`
	FP   string      `json:"fp"`
	Form string      `json:"form"`
}

// FetchStatements pulls the companyfacts document for the given CIK and
// assembles one raw statement per fiscal year, newest first.
func (c *Client) FetchStatements(ctx context.Context, companyID string, periods int) ([]normalizer.RawStatement, error) {
	cik, err := normalizeCIK(companyID)
	if err != nil {
		return nil, err
	}

	facts, err := resilience.DoVal(ctx, c.retry, "edgar companyfacts", func(ctx context.Context) (*companyFacts, error) {
		return resilience.ExecuteVal(c.breaker, func() (*companyFacts, error) {
			return c.fetchFacts(ctx, cik)
		})
	})
	if err != nil {
		if errors.Is(err, ingest.ErrCompanyNotFound) {
			return nil, ingest.ErrCompanyNotFound
		}
		c.log.Warn("companyfacts fetch failed", zap.String("cik", cik), zap.Error(err))
		return nil, eris.Wrap(ingest.ErrSourceUnavailable, err.Error())
	}

	stmts := flattenFacts(facts)
	if len(stmts) == 0 {
		return nil, ingest.ErrCompanyNotFound
	}
	if periods > 0 && len(stmts) > periods {
		stmts = stmts[:periods]
	}

	c.log.Info("fetched statements",
		zap.String("cik", cik),
		zap.String("entity", facts.EntityName),
		zap.Int("periods", len(stmts)))
	return stmts, nil
}

func (c *Client) fetchFacts(ctx context.Context, cik string) (*companyFacts, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "edgar: rate limiter")
	}

	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.baseURL, cik)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "edgar: request"))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ingest.ErrCompanyNotFound
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		io.Copy(io.Discard, resp.Body)
		return nil, resilience.Transient(eris.Errorf("edgar: status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("edgar: unexpected status %d", resp.StatusCode)
	}

	var facts companyFacts
	if err := json.NewDecoder(resp.Body).Decode(&facts); err != nil {
		return nil, eris.Wrap(err, "edgar: decode companyfacts")
	}
	return &facts, nil
}

// flattenFacts picks the annual (10-K, FY) USD fact per concept and fiscal
// period end, and groups them into one raw statement per period.
func flattenFacts(cf *companyFacts) []normalizer.RawStatement {
	byPeriod := make(map[string]map[string]any)

	add := func(tag string, facts []fact) {
		for _, f := range facts {
			if f.FP != "FY" || !strings.HasPrefix(f.Form, "10-K") || f.End == "" {
				continue
			}
			fields, ok := byPeriod[f.End]
			if !ok {
				fields = make(map[string]any)
				byPeriod[f.End] = fields
			}
			// Amended filings repeat facts; first value per period wins.
			if _, dup := fields[tag]; !dup {
				fields[tag] = f.Val
			}
		}
	}

	for tag, con := range cf.Facts.USGAAP {
		if facts, ok := con.Units["USD"]; ok {
			add(tag, facts)
		} else if facts, ok := con.Units["shares"]; ok {
			add(tag, facts)
		}
	}
	for tag, con := range cf.Facts.DEI {
		if facts, ok := con.Units["shares"]; ok {
			add(tag, facts)
		}
	}

	periods := make([]string, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))

	out := make([]normalizer.RawStatement, 0, len(periods))
	for _, p := range periods {
		out = append(out, normalizer.RawStatement{Period: p, Fields: byPeriod[p]})
	}
	return out
}

// normalizeCIK left-pads a numeric CIK to the 10 digits the API expects.
func normalizeCIK(id string) (string, error) {
	id = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(id), "CIK"))
	if id == "" {
		return "", eris.New("edgar: empty company id")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", eris.Errorf("edgar: company id %q is not a CIK", id)
		}
	}
	if len(id) > 10 {
		return "", eris.Errorf("edgar: CIK %q too long", id)
	}
	return strings.Repeat("0", 10-len(id)) + id, nil
}
