package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrBadStatus is returned when a remote source answers with a non-2xx status.
var ErrBadStatus = errors.New("unexpected http status")

// Fetcher reads raw CSV content from http(s) URLs or local files. Remote
// requests share one rate limiter.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
}

// NewFetcher creates a Fetcher. rps and burst pace remote requests; maxBody
// caps the size of a response body.
func NewFetcher(timeout time.Duration, rps float64, burst int, maxBody int64) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		maxBody: maxBody,
	}
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the content of source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !IsRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		return data, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", source, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d for %s", ErrBadStatus, resp.StatusCode, source)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", source, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("body of %s exceeds %d bytes", source, f.maxBody)
	}
	return body, nil
}
