package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
)

const (
	// DefaultTimeout bounds a whole archive download
	DefaultTimeout = 30 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "FrameExtractor/1.0"
	// DownloadBufferSize is the fixed chunk size used while streaming
	DownloadBufferSize = 8 * 1024
)

// Downloader streams an HTTP resource to disk and reports progress
type Downloader struct {
	client    *http.Client
	userAgent string
}

// DownloaderOption is a functional option for configuring Downloader
type DownloaderOption func(*Downloader)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) DownloaderOption {
	return func(d *Downloader) {
		d.userAgent = userAgent
	}
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Download saves url to destPath. The body is written to destPath+".tmp"
// and renamed on success. Percent is derived from Content-Length and stays 0
// when the server does not send one. Failures wrap video.ErrNetwork.
func (d *Downloader) Download(ctx context.Context, url, destPath string, onProgress toolchain.DownloadProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", video.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", video.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code %d from %s", video.ErrNetwork, resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if err := copyWithProgress(tmpFile, resp.Body, resp.ContentLength, onProgress); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, onProgress toolchain.DownloadProgressFunc) error {
	buf := make([]byte, DownloadBufferSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			written += int64(n)

			if onProgress != nil {
				onProgress(downloadProgress(written, total))
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("%w: read body: %v", video.ErrNetwork, readErr)
		}
	}
}

func downloadProgress(written, total int64) toolchain.DownloadProgress {
	if total <= 0 {
		return toolchain.DownloadProgress{
			Status: fmt.Sprintf("Downloading FFmpeg... %.1f MB", float64(written)/(1024*1024)),
		}
	}

	percent := int(written * 100 / total)
	if percent > 100 {
		percent = 100
	}
	return toolchain.DownloadProgress{
		Percent: percent,
		Status:  fmt.Sprintf("Downloading FFmpeg... %d%%", percent),
	}
}
