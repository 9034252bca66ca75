package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/charts/eurusd.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("PNGDATA"))
		case "/moved.png":
			http.Redirect(w, r, "/charts/eurusd.png", http.StatusFound)
		case "/big.bin":
			_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
		case "/empty.png":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1024)
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		media, err := f.Fetch(ctx, srv.URL+"/charts/eurusd.png?v=2")
		require.NoError(t, err)
		assert.Equal(t, "eurusd.png", media.Name)
		assert.Equal(t, "image/png", media.ContentType)
		assert.Equal(t, []byte("PNGDATA"), media.Data)
	})

	t.Run("FollowsRedirects", func(t *testing.T) {
		media, err := f.Fetch(ctx, srv.URL+"/moved.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("PNGDATA"), media.Data)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/missing.png")
		assert.ErrorContains(t, err, "unexpected status 404")
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/big.bin")
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/empty.png")
		assert.ErrorContains(t, err, "empty body")
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.Fetch(canceled, srv.URL+"/charts/eurusd.png")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a.png", fileName("https://x.example/p/a.png?sig=1#frag"))
	assert.Equal(t, "file", fileName("https://x.example/"))
}
