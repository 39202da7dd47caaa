package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Renderer returns the rendered HTML of a page.
type Renderer interface {
	RenderPage(ctx context.Context, pageURL string) (string, error)
}

// Browser renders JavaScript-heavy pages with headless Chrome.
type Browser struct {
	logger          *zap.Logger
	timeout         time.Duration
	acceptLanguage  string
	ChromedpOptions []chromedp.ExecAllocatorOption
}

func NewBrowser(logger *zap.Logger, config *CrawlerConfig, proxyURL string) *Browser {
	if config == nil {
		config = DefaultConfig()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(config.UserAgent),

		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-extensions", true),
	)
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}

	return &Browser{
		logger:          logger,
		timeout:         config.BrowserTimeout,
		acceptLanguage:  config.AcceptLanguage,
		ChromedpOptions: opts,
	}
}

func (b *Browser) RenderPage(ctx context.Context, pageURL string) (string, error) {
	// ================
	// Browser Context
	// ================
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.ChromedpOptions...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	if b.timeout > 0 {
		var timeoutCancel context.CancelFunc
		taskCtx, timeoutCancel = context.WithTimeout(taskCtx, b.timeout)
		defer timeoutCancel()
	}

	// ================
	// Render
	// ================
	logger := GetContextLogger(ctx, b.logger)
	logger.Debug("rendering page", zap.String("url", pageURL))

	var domHTML string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": b.acceptLanguage,
		}),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &domHTML),
	)
	if err != nil {
		return "", fmt.Errorf("browser render failed: %w", err)
	}

	logger.Debug("page rendered", zap.String("url", pageURL), zap.Int("dom_length", len(domHTML)))
	return domHTML, nil
}
