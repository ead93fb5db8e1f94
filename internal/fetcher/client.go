// Package fetcher downloads release archives from the public nuclear data
// servers. Downloads are idempotent: a file already on disk with a matching
// size (and, when known, checksum) is skipped rather than re-fetched.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/utils"
)

// browserUserAgent is sent when a server rejects non-browser clients, as
// the IAEA mirrors do.
const browserUserAgent = "Mozilla/5.0"

// Client downloads files over HTTP with retry and skip-if-present
// semantics.
type Client struct {
	httpClient *http.Client
	retrier    *Retrier
	ledger     domain.Ledger
	userAgent  string
	progress   bool
	log        *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
	// AsBrowser sends a browser User-Agent header.
	AsBrowser bool
	// InsecureTLS disables certificate verification. Several data
	// servers present certificates that fail verification; the original
	// tooling downloaded from them with verification off.
	InsecureTLS bool
	// Ledger records completed downloads for re-run skips. Optional.
	Ledger domain.Ledger
	// Progress renders a byte progress bar on stderr.
	Progress bool

	Logger *utils.Logger
}

// NewClient creates a download client
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	userAgent := ""
	if opts.AsBrowser {
		userAgent = browserUserAgent
	}

	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		retrier:   NewRetrier(RetrierOptions{MaxRetries: opts.MaxRetries}),
		ledger:    opts.Ledger,
		userAgent: userAgent,
		progress:  opts.Progress,
		log:       log.WithComponent("fetcher"),
	}
}

// Download fetches rawURL into destDir, naming the file after the last URL
// path segment. If expectedMD5 is non-empty the downloaded file is verified
// against it. The local path is returned.
func (c *Client) Download(ctx context.Context, rawURL, destDir, expectedMD5 string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", domain.NewFetchError(rawURL, 0, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", domain.NewFetchError(rawURL, 0, fmt.Errorf("cannot derive file name from URL"))
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	local := filepath.Join(destDir, name)

	// A prior run may have recorded this URL; if the file on disk still
	// matches, skip without touching the network.
	if c.ledger != nil {
		if size, sum, ok := c.ledger.Lookup(ctx, rawURL); ok && utils.FileSize(local) == size {
			if sum == "" {
				c.log.Info().Str("file", name).Msg("Skipping, already downloaded")
				return local, nil
			}
			if actual, err := utils.MD5Sum(local); err == nil && actual == sum {
				c.log.Info().Str("file", name).Msg("Skipping, already downloaded")
				return local, nil
			}
		}
	}

	var downloaded bool
	err = c.retrier.Retry(ctx, func() error {
		var err error
		downloaded, err = c.fetch(ctx, rawURL, local)
		return err
	})
	if err != nil {
		return "", err
	}

	sum, err := utils.MD5Sum(local)
	if err != nil {
		return "", err
	}
	if expectedMD5 != "" && sum != expectedMD5 {
		return "", fmt.Errorf("%w: %s: got %s, want %s", domain.ErrChecksum, name, sum, expectedMD5)
	}

	if c.ledger != nil && downloaded {
		if err := c.ledger.Record(ctx, rawURL, utils.FileSize(local), sum); err != nil {
			c.log.Warn().Err(err).Str("url", rawURL).Msg("Failed to record download in ledger")
		}
	}
	return local, nil
}

// fetch performs one GET attempt. It reports whether bytes were actually
// transferred: a size match against the server's Content-Length counts as a
// skip, not a download.
func (c *Client) fetch(ctx context.Context, rawURL, local string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, domain.NewFetchError(rawURL, 0, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &domain.RetryableError{Err: domain.NewFetchError(rawURL, 0, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fetchErr := domain.NewFetchError(rawURL, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode))
		if ShouldRetryStatus(resp.StatusCode) {
			return false, &domain.RetryableError{
				Err:        fetchErr,
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return false, fetchErr
	}

	// Skip if already downloaded with matching size.
	if resp.ContentLength > 0 && utils.FileSize(local) == resp.ContentLength {
		c.log.Info().Str("file", filepath.Base(local)).Msg("Skipping, already downloaded")
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(local), ".download-*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	if c.progress {
		bar := utils.NewByteProgressBar(resp.ContentLength, utils.DescDownloading+" "+filepath.Base(local))
		w = io.MultiWriter(tmp, bar)
		defer bar.Finish()
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		tmp.Close()
		return false, &domain.RetryableError{Err: domain.NewFetchError(rawURL, 0, err)}
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return false, err
	}
	return true, nil
}

// JoinURL resolves a possibly relative file reference against a base URL,
// with the semantics of a browser resolving a link.
func JoinURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
