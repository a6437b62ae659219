package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Result statuses reported by the external tariff source.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusEmpty   = "empty"
)

// Record is one tariff entry as returned by the external source. The rate
// comes over the wire as a display string ("7.5%"); ParseRate converts it.
type Record struct {
	HsCode           string `json:"hs_code"`
	ImportingCountry string `json:"importing_country"`
	ExportingCountry string `json:"exporting_country"`
	TariffRate       string `json:"tariff_rate"`
	Year             *int   `json:"year"`
}

// Result is the outcome of one enrichment fetch for a country pair.
type Result struct {
	Status       string   `json:"status"`
	ResultsCount int      `json:"results_count"`
	Data         []Record `json:"data"`
	Message      string   `json:"message,omitempty"`
}

// Client fetches the full available tariff table for a country pair from
// the external enrichment source. Implementations must honor the context
// deadline; callers treat any failure as "no data", never as fatal.
type Client interface {
	FetchTariffTable(ctx context.Context, importing, exporting string) (Result, error)
}

// HTTPClient talks to the enrichment API over HTTP. The fetch is a single
// blocking call with a multi-minute ceiling; the per-request context set
// by the caller bounds how long one calculation may wait on it.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchTariffTable(ctx context.Context, importing, exporting string) (Result, error) {
	form := url.Values{}
	form.Set("import_code", importing)
	form.Set("export_code", exporting)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Status: StatusError}, fmt.Errorf("failed to build enrichment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Status: StatusError}, fmt.Errorf("enrichment request for %s->%s failed: %w", exporting, importing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{Status: StatusError}, fmt.Errorf("enrichment source returned HTTP %d for %s->%s: %s",
			resp.StatusCode, exporting, importing, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{Status: StatusError}, fmt.Errorf("failed to decode enrichment response: %w", err)
	}

	if result.Status == StatusSuccess && len(result.Data) == 0 {
		result.Status = StatusEmpty
	}

	log.Printf("Enrichment fetch for %s->%s returned status=%s records=%d",
		exporting, importing, result.Status, len(result.Data))
	return result, nil
}

// ParseRate converts a display rate string such as "7.5%" to its
// percentage point value (7.5). Unparseable input counts as zero.
func ParseRate(raw string) decimal.Decimal {
	clean := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if clean == "" {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(clean)
	if err != nil {
		log.Printf("Could not parse tariff rate %q, defaulting to 0", raw)
		return decimal.Zero
	}
	return rate
}
