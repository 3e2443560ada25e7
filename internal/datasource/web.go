package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultFetchTimeout bounds a single page retrieval
	DefaultFetchTimeout = 30 * time.Second
	// DefaultUserAgent identifies the fetcher to remote hosts
	DefaultUserAgent = "Mozilla/5.0 (compatible; dataqa/1.0)"
	// MinContentLength is the extracted text length under which a page is
	// assumed to be rendered client-side.
	MinContentLength = 500
)

// noiseSelector lists elements that never carry page content
const noiseSelector = "nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// WebSource treats a fixed list of pages as a dataset. Pages are fetched one
// per Next call, in list order.
type WebSource struct {
	URLs      []string
	Render    bool     // always render with a headless browser
	Fallback  bool     // render when plain HTTP yields too little text
	Selectors []string // main-content selectors, tried in order; body when none match

	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// SourceType returns "web"
func (s *WebSource) SourceType() string {
	return TypeWeb
}

// ToDict returns the identity-bearing configuration of the source
func (s *WebSource) ToDict() map[string]any {
	urls := make([]string, len(s.URLs))
	copy(urls, s.URLs)
	d := map[string]any{
		"urls":     urls,
		"render":   s.Render,
		"fallback": s.Fallback,
	}
	if len(s.Selectors) > 0 {
		d["selectors"] = s.Selectors
	}
	return d
}

// Load validates the page list; nothing is fetched until the handle is advanced.
func (s *WebSource) Load(_ context.Context) (Handle, error) {
	if len(s.URLs) == 0 {
		return nil, fmt.Errorf("web source has no urls")
	}
	for _, u := range s.URLs {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, &FetchError{URL: u, Message: "invalid URL", Cause: err}
		}
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: s.timeout()}
	}
	return &webHandle{source: s, client: client, render: renderPage}, nil
}

func (s *WebSource) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultFetchTimeout
}

func (s *WebSource) userAgent() string {
	if s.UserAgent != "" {
		return s.UserAgent
	}
	return DefaultUserAgent
}

// pageRenderer returns the HTML of a page after client-side rendering
type pageRenderer func(ctx context.Context, pageURL string, timeout time.Duration) (string, error)

type webHandle struct {
	source *WebSource
	client *http.Client
	render pageRenderer
	pos    int
}

// Next fetches the next page. A page that cannot be retrieved is reported as
// a *RecordError and the handle moves on to the following URL.
func (h *webHandle) Next(ctx context.Context) (Record, error) {
	if h.pos >= len(h.source.URLs) {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pageURL := h.source.URLs[h.pos]
	h.pos++

	rec, err := h.page(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &RecordError{Position: h.pos - 1, Cause: err}
	}
	return rec, nil
}

func (h *webHandle) page(ctx context.Context, pageURL string) (Record, error) {
	var (
		html   string
		status int
		err    error
	)
	if h.source.Render {
		html, err = h.render(ctx, pageURL, h.source.timeout())
		status = http.StatusOK
	} else {
		html, status, err = h.fetch(ctx, pageURL)
	}
	if err != nil {
		return nil, err
	}

	text, err := ExtractMainText(html, h.source.Selectors)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}

	if !h.source.Render && h.source.Fallback && len(strings.TrimSpace(text)) < MinContentLength {
		rendered, err := h.render(ctx, pageURL, h.source.timeout())
		if err == nil {
			if renderedText, err := ExtractMainText(rendered, h.source.Selectors); err == nil {
				html, text = rendered, renderedText
			}
		}
	}

	return Record{
		"url":    pageURL,
		"status": status,
		"html":   html,
		"text":   text,
	}, nil
}

func (h *webHandle) Close() error {
	h.pos = len(h.source.URLs)
	return nil
}

// fetch retrieves a page over plain HTTP. Non-2xx responses are returned with
// their status so the converter can decide what to do with them.
func (h *webHandle) fetch(ctx context.Context, pageURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, &FetchError{URL: pageURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", h.source.userAgent())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", 0, &FetchError{URL: pageURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, &FetchError{URL: pageURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), resp.StatusCode, nil
}

// renderPage loads a page in headless Chrome and returns the rendered HTML.
// Requires Chrome/Chromium on the host.
func renderPage(ctx context.Context, pageURL string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &FetchError{URL: pageURL, Message: "browser rendering failed", Cause: err}
	}
	return html, nil
}

// ExtractMainText parses HTML and returns the text of the first element
// matching one of selectors, falling back to body. Noise elements are removed.
func ExtractMainText(html string, selectors []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	return CleanWhitespace(main.Text()), nil
}

// CleanWhitespace trims every line and drops blank ones
func CleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
