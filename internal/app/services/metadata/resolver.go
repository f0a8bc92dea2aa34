// Package metadata resolves proposals' off-chain references into display
// records and publishes new idea payloads to the content-addressed store.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/filmdao/daoclient/internal/app/domain/metadata"
	"github.com/filmdao/daoclient/pkg/logger"
)

// DefaultContentGateway serves content-addressed references over HTTP.
const DefaultContentGateway = "https://ipfs.io/ipfs/"

// Resolver fetches descriptive metadata for proposals. Unreachable,
// non-success, and malformed responses all degrade to a placeholder record;
// resolution never fails the caller.
type Resolver struct {
	client  *http.Client
	gateway string
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewResolver constructs a resolver. gateway replaces the ipfs:// scheme in
// content-addressed references; empty means DefaultContentGateway.
func NewResolver(client *http.Client, gateway string, log *logger.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	gateway = strings.TrimSpace(gateway)
	if gateway == "" {
		gateway = DefaultContentGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	if log == nil {
		log = logger.NewDefault("metadata-resolver")
	}
	return &Resolver{
		client: client,
		// Third-party gateways throttle aggressively; cap our own rate.
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		gateway: gateway,
		log:     log,
	}
}

// NormalizeReference rewrites a stored reference into a fetchable URL:
// content-addressed locators go through the gateway, bare hostnames get a
// scheme.
func (r *Resolver) NormalizeReference(reference string) string {
	reference = strings.TrimSpace(reference)
	if strings.HasPrefix(reference, "ipfs://") {
		return r.gateway + strings.TrimPrefix(reference, "ipfs://")
	}
	if !strings.HasPrefix(reference, "http://") && !strings.HasPrefix(reference, "https://") {
		return "https://" + reference
	}
	return reference
}

// Resolve fetches the reference once, with no retry, and maps the payload
// into a Details record with defaulted fields.
func (r *Resolver) Resolve(ctx context.Context, reference string) metadata.Details {
	if strings.TrimSpace(reference) == "" {
		return metadata.Invalid()
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return metadata.Placeholder("Could not fetch proposal details.")
	}

	url := r.NormalizeReference(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return metadata.Placeholder("Could not fetch proposal details.")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.WithError(err).WithField("reference", reference).Debug("metadata fetch failed")
		return metadata.Placeholder("Could not fetch proposal details.")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return metadata.Placeholder(fmt.Sprintf("Failed to load proposal data (status %d)", resp.StatusCode))
	}

	var payload struct {
		Title             string `json:"title"`
		Synopsis          string `json:"synopsis"`
		Genre             string `json:"genre"`
		EstimatedBudget   string `json:"estimatedBudget"`
		EstimatedDuration string `json:"estimatedDuration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return metadata.Placeholder("Could not fetch proposal details.")
	}

	details := metadata.Details{
		Title:             payload.Title,
		Synopsis:          payload.Synopsis,
		Genre:             payload.Genre,
		EstimatedBudget:   payload.EstimatedBudget,
		EstimatedDuration: payload.EstimatedDuration,
	}
	if details.Title == "" {
		details.Title = "Untitled"
	}
	if details.Synopsis == "" {
		details.Synopsis = "No synopsis provided."
	}
	if details.Genre == "" {
		details.Genre = "Unknown"
	}
	if details.EstimatedBudget == "" {
		details.EstimatedBudget = "0"
	}
	if details.EstimatedDuration == "" {
		details.EstimatedDuration = "0"
	}
	return details
}

// ResolveAll resolves several references concurrently. The result slice is
// ordered to match refs; resolution order between references is unspecified.
func (r *Resolver) ResolveAll(ctx context.Context, refs []string) []metadata.Details {
	results := make([]metadata.Details, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			results[i] = r.Resolve(ctx, ref)
		}(i, ref)
	}
	wg.Wait()
	return results
}
