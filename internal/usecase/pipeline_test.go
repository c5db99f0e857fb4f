package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PapersNotifier/internal/domain"
	"PapersNotifier/internal/infrastructure/slack"
	"PapersNotifier/internal/infrastructure/storage"
)

type fakeSource struct {
	papers []domain.Paper
	err    error
}

func (f *fakeSource) LoadPending() ([]domain.Paper, error) {
	return f.papers, f.err
}

type fakeLedger struct {
	appended []domain.Paper
	err      error
}

func (f *fakeLedger) LoadSentIDs() (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (f *fakeLedger) AppendSent(papers []domain.Paper) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, papers...)
	return nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Announce(ctx context.Context, papers []domain.Paper, now time.Time) error {
	f.calls++
	return f.err
}

func TestRunEmptyPendingIsSuccessfulNoOp(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	ledger := &fakeLedger{}
	p := NewPipeline(PipelineDeps{
		Pending:  &fakeSource{},
		Ledger:   ledger,
		Notifier: notifier,
	})

	if err := p.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if notifier.calls != 0 {
		t.Fatalf("notifier called %d times for empty batch", notifier.calls)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("ledger updated for empty batch")
	}
}

func TestRunRecordsSentPapersAfterDelivery(t *testing.T) {
	t.Parallel()

	papers := []domain.Paper{{OpenAlexID: "W1"}, {OpenAlexID: "W2"}}
	notifier := &fakeNotifier{}
	ledger := &fakeLedger{}
	p := NewPipeline(PipelineDeps{
		Pending:  &fakeSource{papers: papers},
		Ledger:   ledger,
		Notifier: notifier,
	})

	if err := p.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one delivery, got %d", notifier.calls)
	}
	if len(ledger.appended) != 2 {
		t.Fatalf("expected 2 papers recorded, got %d", len(ledger.appended))
	}
}

func TestRunDeliveryFailureLeavesLedgerUntouched(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: fmt.Errorf("webhook unavailable")}
	ledger := &fakeLedger{}
	p := NewPipeline(PipelineDeps{
		Pending:  &fakeSource{papers: []domain.Paper{{OpenAlexID: "W1"}}},
		Ledger:   ledger,
		Notifier: notifier,
	})

	err := p.Run(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("ledger updated despite delivery failure")
	}
}

func TestRunLoadFailurePropagates(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{
		Pending:  &fakeSource{err: errors.New("malformed csv")},
		Notifier: &fakeNotifier{},
	})

	if err := p.Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pending := filepath.Join(dir, "union_papers_to_email.csv")
	ledger := filepath.Join(dir, "emailed_papers.csv")

	content := "openalex_id,title,authors,journal,doi,publication_date\n" +
		"W100,T,A,J,https://doi.org/x,2024-05-01\n"
	if err := os.WriteFile(pending, []byte(content), 0o644); err != nil {
		t.Fatalf("write pending file: %v", err)
	}

	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	store := storage.NewCSVStore(pending, ledger, nil)
	p := NewPipeline(PipelineDeps{
		Pending:  store,
		Ledger:   store,
		Notifier: slack.NewNotifier(server.URL, nil),
	})

	if err := p.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	wantBlock := "*A*\\n_T_\\n📄 <https://doi.org/x|J>  |  📅 2024-05-01"
	if !strings.Contains(string(gotBody), wantBlock) {
		t.Fatalf("payload missing paper block %q:\n%s", wantBlock, gotBody)
	}

	raw, err := os.ReadFile(ledger)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if string(raw) != "openalex_id\nW100\n" {
		t.Fatalf("unexpected ledger content: %q", raw)
	}
}

func TestRunEndToEndFailureKeepsLedgerAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pending := filepath.Join(dir, "union_papers_to_email.csv")
	ledger := filepath.Join(dir, "emailed_papers.csv")

	content := "openalex_id,title,authors,journal,doi,publication_date\n" +
		"W100,T,A,J,https://doi.org/x,2024-05-01\n"
	if err := os.WriteFile(pending, []byte(content), 0o644); err != nil {
		t.Fatalf("write pending file: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	store := storage.NewCSVStore(pending, ledger, nil)
	p := NewPipeline(PipelineDeps{
		Pending:  store,
		Ledger:   store,
		Notifier: slack.NewNotifier(server.URL, nil),
	})

	if err := p.Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected delivery error")
	}

	if _, err := os.Stat(ledger); !os.IsNotExist(err) {
		t.Fatalf("ledger should not exist after failed delivery, stat err: %v", err)
	}
}
