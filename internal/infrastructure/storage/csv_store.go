package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"PapersNotifier/internal/domain"
	"PapersNotifier/internal/ports"
)

const ledgerHeader = "openalex_id"

// CSVStore reads the pending-papers table and maintains the sent ledger, both
// as flat CSV files. Concurrent invocations are not a supported scenario; the
// ledger rewrite is not guarded against simultaneous runs.
type CSVStore struct {
	pendingPath string
	ledgerPath  string
	logger      *slog.Logger
}

var _ ports.PendingSource = (*CSVStore)(nil)
var _ ports.SentLedger = (*CSVStore)(nil)

// NewCSVStore wires the two file paths.
func NewCSVStore(pendingPath, ledgerPath string, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		pendingPath: pendingPath,
		ledgerPath:  ledgerPath,
		logger:      logger,
	}
}

// LoadPending parses the pending-papers file. An absent file yields an empty
// batch, not an error. Columns are resolved by header name; extra columns are
// ignored. The result is sorted by publication date descending, which leaves
// papers with an empty date last.
func (s *CSVStore) LoadPending() ([]domain.Paper, error) {
	f, err := os.Open(s.pendingPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.info("no pending papers file found", "path", s.pendingPath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open pending papers: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending papers header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var papers []domain.Paper
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pending papers: %w", err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		papers = append(papers, domain.Paper{
			OpenAlexID:      field("openalex_id"),
			Title:           field("title"),
			Authors:         field("authors"),
			Journal:         field("journal"),
			DOI:             field("doi"),
			PublicationDate: field("publication_date"),
		})
	}

	slices.SortStableFunc(papers, func(a, b domain.Paper) int {
		return strings.Compare(b.PublicationDate, a.PublicationDate)
	})

	return papers, nil
}

// LoadSentIDs parses the ledger into a set; an absent file yields an empty set.
func (s *CSVStore) LoadSentIDs() (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	f, err := os.Open(s.ledgerPath)
	if errors.Is(err, fs.ErrNotExist) {
		return ids, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ids, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger header: %w", err)
	}

	idColumn := 0
	for i, name := range header {
		if strings.TrimSpace(name) == ledgerHeader {
			idColumn = i
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if idColumn < len(row) && row[idColumn] != "" {
			ids[row[idColumn]] = struct{}{}
		}
	}

	return ids, nil
}

// AppendSent merges the ids of papers into the existing ledger set and rewrites
// the whole file: header row, then ids in ascending order. A full rewrite keeps
// the file well-formed after any previous partial write; it is not atomic
// across a crash mid-write.
func (s *CSVStore) AppendSent(papers []domain.Paper) error {
	ids, err := s.LoadSentIDs()
	if err != nil {
		return err
	}
	for _, paper := range papers {
		ids[paper.OpenAlexID] = struct{}{}
	}

	sorted := slices.Sorted(maps.Keys(ids))

	f, err := os.Create(s.ledgerPath)
	if err != nil {
		return fmt.Errorf("rewrite ledger: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{ledgerHeader}); err != nil {
		_ = f.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, id := range sorted {
		if err := writer.Write([]string{id}); err != nil {
			_ = f.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}

	s.info("ledger updated", "path", s.ledgerPath, "new_papers", len(papers), "total", len(sorted))
	return nil
}

func (s *CSVStore) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
