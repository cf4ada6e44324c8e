package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/logger"
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// MaxFetchElapsed bounds the retries of a remote workbook download.
var MaxFetchElapsed = 30 * time.Second

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	l := strings.ToLower(source)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// OpenWorkbook opens a local .xlsx path or downloads it from an http(s) URL.
func OpenWorkbook(ctx context.Context, source string) (*excelize.File, error) {
	if !IsRemote(source) {
		f, err := excelize.OpenFile(source)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}
	body, err := download(ctx, source)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open downloaded workbook: %w", err)
	}
	return f, nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	log := logger.Component("dataset.fetch").WithWorkbook(url, "")

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = MaxFetchElapsed

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("download failed")
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode >= 500:
			log.WithField("status", resp.StatusCode).WithField("attempt", attempt).Warn("server error")
			return fmt.Errorf("server error: %s", resp.Status)
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("download workbook: %s", resp.Status))
		case len(data) == 0:
			return fmt.Errorf("empty body")
		}
		body = data
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	log.WithField("bytes", len(body)).WithField("attempts", attempt).Info("workbook downloaded")
	return body, nil
}
