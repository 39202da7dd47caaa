package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Electric Vehicles Explained</title>
<meta name="description" content="A primer on EVs"></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Electric Vehicles Explained</h1>
<p>Electric vehicles convert about 77% of the electrical energy from the grid to power at the wheels.</p>
<p>According to the Department of Energy, conventional gasoline vehicles only convert about 12% to 30% of the energy stored in gasoline.</p>
<p>The main advantage of electric motors is that they provide instant torque and a smooth driving experience for the driver.</p>
<p>One drawback is that charging infrastructure is still limited in many rural areas across the country today.</p>
</article>
<footer>Copyright 2024</footer>
</body></html>`

func newTestCrawler(renderer Renderer) *Crawler {
	cfg := DefaultConfig()
	cfg.FetchTimeout = 2 * time.Second
	logger := zap.NewNop()
	return NewCrawler(NewFetcher(http.DefaultTransport, cfg, logger), NewExtractor(logger), renderer, logger)
}

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (f *fakeRenderer) RenderPage(ctx context.Context, pageURL string) (string, error) {
	f.calls++
	return f.html, f.err
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, articleHTML)
		case "/doc.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(http.DefaultTransport, DefaultConfig(), zap.NewNop())

	page, err := f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, FetchedViaHTTP, page.FetchedVia)
	assert.Contains(t, string(page.Body), "Electric Vehicles Explained")

	page, err = f.Fetch(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.True(t, page.IsPDF())
	assert.Equal(t, FetchedViaPDF, page.FetchedVia)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestFetcher_RespectsCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.FetchTimeout = 5 * time.Second
	f := NewFetcher(http.DefaultTransport, cfg, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCrawler_Crawl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	c := newTestCrawler(nil)
	content, err := c.Crawl(context.Background(), srv.URL+"/article")
	require.NoError(t, err)

	assert.Equal(t, FetchedViaHTTP, content.FetchedVia)
	assert.Contains(t, content.TextContent, "instant torque")
	assert.NotEmpty(t, content.TextMd)
	assert.Equal(t, "Electric Vehicles Explained", content.Metadata.Title)
	assert.Greater(t, content.Quality.WordCount, 20)
}

func TestCrawler_BrowserFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><div id="app"></div><script>render()</script></body></html>`)
	}))
	defer srv.Close()

	renderer := &fakeRenderer{html: articleHTML}
	c := newTestCrawler(renderer)

	content, err := c.Crawl(context.Background(), srv.URL+"/spa")
	require.NoError(t, err)
	assert.Equal(t, FetchedViaBrowser, content.FetchedVia)
	assert.Equal(t, 1, renderer.calls)

	_, err = c.Crawl(context.Background(), srv.URL+"/gone")
	require.Error(t, err)
	assert.Equal(t, 1, renderer.calls)
}

func TestCrawler_NoContentWithoutRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><nav>Home</nav></body></html>`)
	}))
	defer srv.Close()

	c := newTestCrawler(nil)
	_, err := c.Crawl(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrNoContent))
}

func TestCrawler_NavOnlyPageFallsBackToBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><nav><a href="/">Home</a></nav></body></html>`)
	}))
	defer srv.Close()

	renderer := &fakeRenderer{html: articleHTML}
	c := newTestCrawler(renderer)

	content, err := c.Crawl(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, FetchedViaBrowser, content.FetchedVia)
	assert.Equal(t, 1, renderer.calls)
}

func TestExtractor_RejectsThinContent(t *testing.T) {
	e := NewExtractor(zap.NewNop())

	testCases := []struct {
		name string
		html string
	}{
		{"NavOnly", `<html><body><nav>Home</nav></body></html>`},
		{"Teaser", `<html><body><p>Subscribe to read the full story about batteries.</p></body></html>`},
		{"Empty", `<html><body></body></html>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Extract(&Page{
				URL:         "https://example.com/article",
				ContentType: "text/html",
				Body:        []byte(tc.html),
				FetchedVia:  FetchedViaHTTP,
			})
			assert.ErrorIs(t, err, ErrNoContent)
		})
	}
}

func TestCrawler_RenderErrorKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	renderer := &fakeRenderer{err: errors.New("chrome not found")}
	c := newTestCrawler(renderer)

	_, err := c.Crawl(context.Background(), srv.URL)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "chrome not found"))
}

func TestExtractor_InvalidPDF(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	_, err := e.Extract(&Page{
		URL:         "https://example.com/a.pdf",
		ContentType: "application/pdf",
		Body:        []byte("definitely not a pdf"),
	})
	assert.Error(t, err)
}

func TestExtractWithGoquery(t *testing.T) {
	content, err := extractWithGoquery([]byte(articleHTML))
	require.NoError(t, err)

	assert.Equal(t, "Electric Vehicles Explained", content.Metadata.Title)
	assert.Equal(t, "A primer on EVs", content.Metadata.Description)
	assert.NotContains(t, content.TextContent, "Copyright")
	lines := strings.Split(content.TextContent, "\n")
	assert.Len(t, lines, 5)
}

func TestMeasureQuality(t *testing.T) {
	assert.Equal(t, QualityMetrics{}, MeasureQuality(""))

	q := MeasureQuality("One two three. Four five six! Seven eight nine?")
	assert.Equal(t, 9, q.WordCount)
	assert.Equal(t, 3, q.SentenceCount)
	assert.InDelta(t, 3.0, q.AvgSentenceLength, 1e-9)
	assert.InDelta(t, 1.0, q.VocabRichness, 1e-9)
	assert.InDelta(t, 24.0, q.Score, 1e-9)
}

func TestNewHTTPClient(t *testing.T) {
	client, transport, err := NewHTTPClient("")
	require.NoError(t, err)
	assert.Same(t, transport, client.Transport)

	_, transport, err = NewHTTPClient("socks5://127.0.0.1:9050")
	require.NoError(t, err)
	assert.NotNil(t, transport.DialContext)
	assert.Nil(t, transport.Proxy)

	_, transport, err = NewHTTPClient("http://proxy.local:3128")
	require.NoError(t, err)
	assert.NotNil(t, transport.Proxy)

	_, _, err = NewHTTPClient("ftp://proxy.local")
	assert.Error(t, err)
}

func TestGetContextLogger(t *testing.T) {
	ctx := WithURL(WithRequestID(context.Background(), "req-1"), "https://example.com")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
	assert.NotNil(t, GetContextLogger(ctx, zap.NewNop()))
}
