package delivery

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"telepost/internal/observability"

	"github.com/valyala/fasthttp"
)

const maxFetchRedirects = 5

// Media is a fetched attachment held in memory.
type Media struct {
	Name        string
	ContentType string
	Data        []byte
}

// Fetcher downloads media bytes for direct upload.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Media, error)
}

// HTTPFetcher fetches media over HTTP with a size cap and timeout.
type HTTPFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewHTTPFetcher creates a fetcher that refuses bodies larger than maxBytes.
func NewHTTPFetcher(timeout time.Duration, maxBytes int) *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			Name:                "telepost-media-fetcher",
			MaxResponseBodySize: maxBytes,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		timeout: timeout,
	}
}

// Fetch downloads rawURL into memory. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(f.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	req.SetTimeout(time.Until(deadline))

	if err := f.client.DoRedirects(req, resp, maxFetchRedirects); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, status)
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch %s: empty body", rawURL)
	}
	observability.MediaFetchBytes.Observe(float64(len(body)))

	// The response buffer is returned to the pool on release.
	data := make([]byte, len(body))
	copy(data, body)

	return &Media{
		Name:        fileName(rawURL),
		ContentType: string(resp.Header.ContentType()),
		Data:        data,
	}, nil
}

// fileName derives an upload file name from the URL path.
func fileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "file"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
