package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/agrimap/internal/config"
	"github.com/JonMunkholm/agrimap/internal/core"
)

// Open picks the configured source: DATABASE_URL first, then SOURCE_FILE,
// then SOURCE_URL. A non-empty override (an http(s) URL or a file path)
// replaces the configured choice. A nil source means none is configured.
//
// The returned close function releases the source and is never nil.
func Open(ctx context.Context, cfg *config.Config, override string) (Source, func()) {
	noop := func() {}

	if override != "" {
		return sourceFor(override, cfg), noop
	}

	if cfg.Database.URL != "" {
		pg, err := NewPostgresSource(ctx, PoolConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		}, cfg.Database.Table)
		if err != nil {
			// Reported through LoadWithFallback like any other load failure.
			return &failedSource{name: sourceName(cfg.Database.URL, cfg.Database.Table), err: err}, noop
		}
		return pg, pg.Close
	}

	if cfg.Data.SourceFile != "" {
		return &FileSource{Path: cfg.Data.SourceFile}, noop
	}
	if cfg.Data.SourceURL != "" {
		return NewHTTPSource(cfg.Data.SourceURL, cfg.Data.FetchTimeout), noop
	}
	return nil, noop
}

func sourceFor(location string, cfg *config.Config) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location, cfg.Data.FetchTimeout)
	}
	return &FileSource{Path: location}
}

// failedSource reports a source that could not be opened.
type failedSource struct {
	name string
	err  error
}

func (s *failedSource) Name() string { return s.name }

func (s *failedSource) Load(context.Context) (*core.Dataset, error) {
	return nil, fmt.Errorf("%w: %v", core.ErrDataLoad, s.err)
}
