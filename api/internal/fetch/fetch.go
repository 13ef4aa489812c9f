package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"llm-relay/api/internal/apperr"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 32 << 20
	userAgent       = "llm-relay/1.0"
)

type Response struct {
	Body        []byte
	ContentType string
}

type Fetcher struct {
	httpc    *http.Client
	maxBytes int64
}

func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		httpc:    &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch GETs rawURL and returns its body with the declared Content-Type.
// Every failure is an apperr of kind Fetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Response, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Fetch, "bad url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return Response{}, apperr.New(apperr.Fetch, fmt.Sprintf("unsupported url %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Fetch, "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpc.Do(req)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Fetch, "GET", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Response{}, apperr.New(apperr.Fetch, fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Fetch, "read body", err)
	}
	if int64(len(body)) > f.maxBytes {
		return Response{}, apperr.New(apperr.Fetch, fmt.Sprintf("body exceeds %d bytes", f.maxBytes))
	}

	return Response{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}
