package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"resale-explorer/models"
	"resale-explorer/server"
	"resale-explorer/utils"
)

// readySelector is the element the dashboard page renders once its data is in.
const readySelector = "#dashboard"

// Options configures the headless browser and the capture loop.
type Options struct {
	ChromeBin   string
	Width       int
	Height      int
	Timeout     time.Duration
	Retries     int
	Concurrency int
	Interval    time.Duration
}

// Target is one page to capture and the file to write it to.
type Target struct {
	Name   string
	URL    string
	Output string
}

// Result reports the outcome of capturing a single Target.
type Result struct {
	Target Target
	Bytes  int
	Err    error
}

// Exporter captures dashboard pages as full-page PNG screenshots.
type Exporter struct {
	opts   Options
	logger *utils.Logger
	pool   *utils.WorkerPool
	retry  *utils.RetryConfig
}

// captureFunc writes one target and reports the number of bytes written.
type captureFunc func(ctx context.Context, t Target) (int, error)

// New creates an Exporter. Zero values in opts fall back to workable defaults.
func New(opts Options, logger *utils.Logger) *Exporter {
	if opts.Width <= 0 {
		opts.Width = 1400
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Exporter{
		opts:   opts,
		logger: logger,
		pool:   utils.NewWorkerPool(opts.Concurrency, opts.Interval),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.Retries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Export captures every target, sharing one browser between them. Targets
// that write to a file already claimed by an earlier target are skipped.
// The returned error joins the failures of individual targets.
func (e *Exporter) Export(ctx context.Context, targets []Target) ([]Result, error) {
	chromeBin := FindChromeBinary(e.opts.ChromeBin)
	if chromeBin == "" {
		e.logger.Warn("[snapshot] No Chrome binary found, relying on chromedp's lookup")
	} else {
		e.logger.Info("[snapshot] Using browser binary: %s", chromeBin)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(chromeBin, e.opts)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// start the browser up front so tab failures are not mistaken for launch failures
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	results := e.captureAll(browserCtx, targets, e.capture)

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Target.Name, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// captureAll runs capture for each target on the worker pool and collects
// the outcomes. Each call returns its own slice.
func (e *Exporter) captureAll(ctx context.Context, targets []Target, capture captureFunc) []Result {
	written := utils.NewStringSet()
	var (
		mu      sync.Mutex
		results []Result
	)
	for _, t := range targets {
		if !written.Add(t.Output) {
			e.logger.Warn("[snapshot] Skipping %s: %s is already being written", t.Name, t.Output)
			continue
		}
		e.pool.Submit(ctx, func(ctx context.Context) {
			n, err := capture(ctx, t)
			if err != nil {
				e.logger.Error("[snapshot] %s failed: %v", t.Name, err)
			} else {
				e.logger.Info("[snapshot] Wrote %s (%d bytes)", t.Output, n)
			}
			mu.Lock()
			results = append(results, Result{Target: t, Bytes: n, Err: err})
			mu.Unlock()
		})
	}
	e.pool.Wait()
	return results
}

func (e *Exporter) capture(browserCtx context.Context, t Target) (int, error) {
	var buf []byte
	err := e.retry.Do(browserCtx, "snapshot "+t.Name, func() error {
		tabCtx, cancelTab := chromedp.NewContext(browserCtx)
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, e.opts.Timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.EmulateViewport(int64(e.opts.Width), int64(e.opts.Height)),
			chromedp.Navigate(t.URL),
			chromedp.WaitVisible(readySelector, chromedp.ByQuery),
			// quality 100 selects PNG
			chromedp.FullScreenshot(&buf, 100),
		)
	})
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(t.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(t.Output, buf, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", t.Output, err)
	}
	return len(buf), nil
}

func allocatorOptions(chromeBin string, opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}
	return allocOpts
}

// TownTargets builds one capture target per town, each pointing at the
// dashboard page at baseURL with criteria narrowed to that town. With no
// towns it returns a single target for criteria as given.
func TownTargets(baseURL string, criteria models.FilterCriteria, towns []string, output string) []Target {
	baseURL = strings.TrimRight(baseURL, "/")
	if len(towns) == 0 {
		return []Target{{
			Name:   criteria.Town,
			URL:    baseURL + "/?" + server.EncodeCriteria(criteria).Encode(),
			Output: output,
		}}
	}

	targets := make([]Target, 0, len(towns))
	for _, town := range towns {
		c := criteria
		c.Town = town
		targets = append(targets, Target{
			Name:   town,
			URL:    baseURL + "/?" + server.EncodeCriteria(c).Encode(),
			Output: OutputPath(output, town),
		})
	}
	return targets
}

// URLTargets is TownTargets for a dashboard served elsewhere: each town
// replaces the town parameter of rawURL and keeps the rest of its query.
func URLTargets(rawURL string, towns []string, output string) ([]Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("snapshot: url %q needs a scheme and host", rawURL)
	}
	if len(towns) == 0 {
		return []Target{{Name: u.Host, URL: u.String(), Output: output}}, nil
	}

	targets := make([]Target, 0, len(towns))
	for _, town := range towns {
		q := u.Query()
		q.Set("town", town)
		tu := *u
		tu.RawQuery = q.Encode()
		targets = append(targets, Target{Name: town, URL: tu.String(), Output: OutputPath(output, town)})
	}
	return targets, nil
}

// OutputPath inserts a slug of town before the extension of output, so
// "out/dashboard.png" becomes "out/dashboard-bukit-merah.png".
func OutputPath(output, town string) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".png"
	}
	if slug := slugify(town); slug != "" {
		base += "-" + slug
	}
	return base + ext
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FindChromeBinary locates a Chrome/Chromium binary: the configured path
// first, then CHROME_BIN, then PATH and the usual install locations.
func FindChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
