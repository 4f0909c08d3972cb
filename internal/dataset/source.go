package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/JonMunkholm/agrimap/internal/core"
)

// Source produces the dataset the dashboard starts from.
type Source interface {
	Name() string
	Load(ctx context.Context) (*core.Dataset, error)
}

// LoadWithFallback loads from src and falls back to the built-in sample on
// any failure, including a load that yields no records. The returned name
// identifies where the data came from. A nil src loads the sample directly.
func LoadWithFallback(ctx context.Context, src Source, logger *slog.Logger) (*core.Dataset, string) {
	if logger == nil {
		logger = slog.Default()
	}
	if src == nil {
		return Sample(), SampleName
	}

	start := time.Now()
	ds, err := src.Load(ctx)
	if err == nil && len(ds.Records) == 0 {
		err = fmt.Errorf("%w: %s returned no records", core.ErrDataLoad, src.Name())
	}
	if err != nil {
		logger.Warn("data source unavailable, using sample dataset",
			"source", src.Name(),
			"code", core.MapError(err).Code,
			"error", err,
			"duration", time.Since(start),
		)
		return Sample(), SampleName
	}

	logger.Info("dataset loaded",
		"source", src.Name(),
		"records", len(ds.Records),
		"columns", len(ds.Columns),
		"duration", time.Since(start),
	)
	return ds, src.Name()
}

// HTTPSource fetches a CSV document with a GET request.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration // Whole-request bound; zero means no bound beyond ctx
}

// NewHTTPSource returns a source for url with its own client.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{}, Timeout: timeout}
}

func (s *HTTPSource) Name() string { return s.URL }

// Load fetches and parses the document. Transport errors and non-2xx
// responses are reported as core.ErrDataLoad.
func (s *HTTPSource) Load(ctx context.Context) (*core.Dataset, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", core.ErrDataLoad, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDataLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: %s: status %d", core.ErrDataLoad, s.URL, resp.StatusCode)
	}

	body := cleanReader(resp.Body)
	ds, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDataLoad, s.URL, err)
	}
	slog.Debug("fetched dataset", "url", s.URL, "bytes", body.n)
	return ds, nil
}

// FileSource reads a CSV file from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return s.Path }

// Load reads and parses the file.
func (s *FileSource) Load(ctx context.Context) (*core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDataLoad, err)
	}
	defer f.Close()

	ds, err := ParseCSV(cleanReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDataLoad, s.Path, err)
	}
	return ds, nil
}
