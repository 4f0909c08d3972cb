package render

import (
	"sync"

	"github.com/JonMunkholm/agrimap/internal/core"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Stats summarizes the dataset and the filtered view.
type Stats struct {
	Total             int     `json:"total"`
	Visible           int     `json:"visible"`
	TotalWaste        float64 `json:"totalWaste"`
	TotalWasteDisplay string  `json:"totalWasteDisplay"`
}

// ComputeStats counts v against its store. Missing waste values count as zero.
func ComputeStats(v core.View, p *message.Printer) Stats {
	s := Stats{
		Visible:    v.Len(),
		TotalWaste: v.TotalWaste(),
	}
	if store := v.Store(); store != nil {
		s.Total = store.Len()
	}
	s.TotalWasteDisplay = FormatTonnes(p, s.TotalWaste)
	return s
}

// FormatTonnes groups digits for the printer's locale, with at most three
// fraction digits ("1,310", "75.5").
func FormatTonnes(p *message.Printer, v float64) string {
	return p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// StatsPanel holds the statistics of the last render.
// It implements core.StatsRenderer.
type StatsPanel struct {
	printer *message.Printer

	mu    sync.RWMutex
	stats Stats
}

// NewStatsPanel formats numbers for tag.
func NewStatsPanel(tag language.Tag) *StatsPanel {
	return &StatsPanel{printer: message.NewPrinter(tag)}
}

// RenderStats recomputes the statistics from v.
func (s *StatsPanel) RenderStats(v core.View) {
	st := ComputeStats(v, s.printer)

	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
}

// Stats returns the statistics of the last render.
func (s *StatsPanel) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
