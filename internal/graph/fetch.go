package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher downloads stats payloads.
type Fetcher struct {
	Client   *http.Client
	Backoffs []time.Duration // waits between attempts; len+1 attempts in total
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		Backoffs: []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second},
	}
}

// Fetch GETs url and decodes the payload. Transport failures, 429 and 5xx
// responses are retried; every other failure is returned at once as a
// *NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (RawPayload, error) {
	var lastErr error
	for attempt := 0; attempt < len(f.Backoffs)+1; attempt++ {
		if attempt > 0 {
			wait := f.Backoffs[attempt-1]
			logrus.Debugf("fetch: retrying %s in %s after: %v", url, wait, lastErr)
			select {
			case <-ctx.Done():
				return RawPayload{}, &NetworkError{URL: url, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}
		raw, retry, err := f.fetchOnce(ctx, url)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return RawPayload{}, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (RawPayload, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RawPayload{}, false, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("User-Agent", "statchart/1.0")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		retry := !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		return RawPayload{}, retry, &NetworkError{URL: url, Err: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return RawPayload{}, true, &NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", readErr)}
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return RawPayload{}, true, &NetworkError{URL: url, Status: resp.StatusCode, Preview: preview(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return RawPayload{}, false, &NetworkError{URL: url, Status: resp.StatusCode, Preview: preview(body)}
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '<' {
		return RawPayload{}, false, &NetworkError{URL: url, Status: resp.StatusCode, Err: errors.New("non-json body"), Preview: preview(body)}
	}
	raw, err := DecodePayload(body)
	if err != nil {
		return RawPayload{}, false, &NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("failed to parse payload: %w", err), Preview: preview(body)}
	}
	logrus.Debugf("fetch: %s -> %d dates, %d entities", url, len(raw.Dates), len(raw.Series))
	return raw, false, nil
}
