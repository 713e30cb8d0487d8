package s0_snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/httputil"
	"github.com/wonny/equityrank/pkg/logger"
)

// Constituent is one row of the universe list
type Constituent struct {
	Symbol string
	Name   string
	Sector string
}

// ParseConstituents reads the first HTML table carrying a Symbol column.
// Recognised headers: Symbol, Security, GICS Sector.
func ParseConstituents(r io.Reader) (map[string]Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		out   map[string]Constituent
		found bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols := headerIndex(table)
		symCol, ok := cols["symbol"]
		if !ok {
			return true
		}
		found = true
		out = make(map[string]Constituent)

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= symCol {
				return
			}
			sym := strings.TrimSpace(cells.Eq(symCol).Text())
			if sym == "" {
				return
			}
			c := Constituent{Symbol: sym}
			if i, ok := cols["security"]; ok && i < cells.Length() {
				c.Name = strings.TrimSpace(cells.Eq(i).Text())
			}
			if i, ok := cols["gics sector"]; ok && i < cells.Length() {
				c.Sector = strings.TrimSpace(cells.Eq(i).Text())
			}
			if c.Sector == "" {
				c.Sector = contracts.UnknownSector
			}
			out[sym] = c
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("no table with a Symbol column")
	}
	return out, nil
}

func headerIndex(table *goquery.Selection) map[string]int {
	cols := make(map[string]int)
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		cols[strings.ToLower(strings.TrimSpace(th.Text()))] = i
	})
	return cols
}

// Enrich fills missing name and sector from the constituents map.
// A sector still blank afterwards becomes Unknown.
func Enrich(rows []contracts.EntitySnapshot, constituents map[string]Constituent) (matched int) {
	for i := range rows {
		if c, ok := constituents[rows[i].Ticker]; ok {
			matched++
			if rows[i].Name == "" {
				rows[i].Name = c.Name
			}
			if strings.TrimSpace(rows[i].Sector) == "" {
				rows[i].Sector = c.Sector
			}
		}
		if strings.TrimSpace(rows[i].Sector) == "" {
			rows[i].Sector = contracts.UnknownSector
		}
	}
	return matched
}

// EnrichedSource decorates a source with constituents lookup from a local file or a URL
type EnrichedSource struct {
	inner  contracts.SnapshotSource
	file   string
	url    string
	client *httputil.Client
	logger *logger.Logger
}

// NewEnrichedSource wraps inner. file takes precedence over url.
func NewEnrichedSource(inner contracts.SnapshotSource, file, url string, client *httputil.Client, log *logger.Logger) *EnrichedSource {
	return &EnrichedSource{
		inner:  inner,
		file:   file,
		url:    url,
		client: client,
		logger: log.WithStage(contracts.StageSnapshot.String()),
	}
}

// Load implements contracts.SnapshotSource. Constituents failures are logged, not returned.
func (s *EnrichedSource) Load(ctx context.Context, date time.Time) ([]contracts.EntitySnapshot, error) {
	rows, err := s.inner.Load(ctx, date)
	if err != nil {
		return nil, err
	}

	constituents, err := s.constituents(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Constituents unavailable, sectors left as supplied")
		constituents = nil
	}

	matched := Enrich(rows, constituents)
	s.logger.WithFields(map[string]interface{}{
		"constituents": len(constituents),
		"matched":      matched,
	}).Debug("Constituents applied")

	return rows, nil
}

func (s *EnrichedSource) constituents(ctx context.Context) (map[string]Constituent, error) {
	switch {
	case s.file != "":
		f, err := os.Open(s.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseConstituents(f)
	case s.url != "" && s.client != nil:
		body, err := s.client.GetBytes(ctx, s.url)
		if err != nil {
			return nil, err
		}
		return ParseConstituents(bytes.NewReader(body))
	default:
		return nil, nil
	}
}
