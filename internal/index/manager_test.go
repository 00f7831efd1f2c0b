package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/proposalhub/search-sync/internal/engine"
	"github.com/proposalhub/search-sync/internal/record"
	"github.com/proposalhub/search-sync/pkg/config"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
)

// fakeEngine is an in-memory engine keyed by documentId.
type fakeEngine struct {
	mu         sync.Mutex
	docs       map[string]record.IndexedDocument
	batches    [][]record.IndexedDocument
	failBatch  int // 1-based AddDocuments call number to fail, 0 = never
	callCount  int
	isIndexing bool
	settings   *engine.Settings
	statsErr   error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{docs: make(map[string]record.IndexedDocument)}
}

func (f *fakeEngine) AddDocuments(ctx context.Context, docs []record.IndexedDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.batches = append(f.batches, docs)
	if f.failBatch != 0 && f.callCount == f.failBatch {
		return errors.New("engine write failed")
	}
	for _, d := range docs {
		f.docs[d.DocumentID] = d
	}
	return nil
}

func (f *fakeEngine) DeleteDocument(ctx context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, documentID)
	return nil
}

func (f *fakeEngine) DeleteAllDocuments(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = make(map[string]record.IndexedDocument)
	return nil
}

func (f *fakeEngine) Stats(ctx context.Context) (*engine.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &engine.Stats{
		DocumentCount: int64(len(f.docs)),
		IsIndexing:    f.isIndexing,
	}, nil
}

func (f *fakeEngine) ApplySettings(ctx context.Context, s engine.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = &s
	return nil
}

func (f *fakeEngine) GetSettings(ctx context.Context) (*engine.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return &engine.Settings{}, nil
	}
	return f.settings, nil
}

func (f *fakeEngine) Search(ctx context.Context, q engine.Query) (*engine.Result, error) {
	return &engine.Result{Hits: []any{}}, nil
}

// fakeSource serves a fixed published-record list.
type fakeSource struct {
	records []record.SourceRecord
	err     error
}

func (s *fakeSource) ListPublished(ctx context.Context) ([]record.SourceRecord, error) {
	return s.records, s.err
}

func publishedRecords(n int) []record.SourceRecord {
	now := time.Now().UTC()
	records := make([]record.SourceRecord, n)
	for i := range records {
		records[i] = record.SourceRecord{
			ID:          int64(i + 1),
			DocumentID:  fmt.Sprintf("doc%020d", i),
			Name:        fmt.Sprintf("Proposal %d", i),
			PublishedAt: &now,
		}
	}
	return records
}

func testConfig() config.SyncConfig {
	return config.SyncConfig{
		RebuildBatchSize: 100,
		ClearTimeout:     time.Second,
		PollInterval:     10 * time.Millisecond,
	}
}

func TestUpsertAndRemove(t *testing.T) {
	eng := newFakeEngine()
	m := NewManager(eng, nil, nil, nil, testConfig())

	doc := record.IndexedDocument{DocumentID: "abc", Name: "Proposal"}
	if err := m.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}
	if _, ok := eng.docs["abc"]; !ok {
		t.Fatal("document not stored")
	}

	if err := m.Remove(context.Background(), "abc"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok := eng.docs["abc"]; ok {
		t.Fatal("document not removed")
	}

	// Removing an absent document is a no-op.
	if err := m.Remove(context.Background(), "never-existed"); err != nil {
		t.Errorf("removing absent document errored: %v", err)
	}
}

func TestRebuildBatching(t *testing.T) {
	eng := newFakeEngine()
	source := &fakeSource{records: publishedRecords(250)}
	m := NewManager(eng, source, nil, nil, testConfig())

	result, err := m.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if result.Indexed != 250 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 250 indexed", result)
	}
	if len(eng.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(eng.batches))
	}
	for i, want := range []int{100, 100, 50} {
		if len(eng.batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(eng.batches[i]), want)
		}
	}
}

func TestRebuildFailedBatchSkipped(t *testing.T) {
	eng := newFakeEngine()
	eng.failBatch = 2
	source := &fakeSource{records: publishedRecords(250)}
	m := NewManager(eng, source, nil, nil, testConfig())

	result, err := m.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if result.Indexed != 150 {
		t.Errorf("Indexed = %d, want 150", result.Indexed)
	}
	if result.Skipped != 100 {
		t.Errorf("Skipped = %d, want 100", result.Skipped)
	}
	if len(eng.docs) != 150 {
		t.Errorf("engine holds %d docs, want 150", len(eng.docs))
	}
}

func TestRebuildSourceError(t *testing.T) {
	m := NewManager(newFakeEngine(), &fakeSource{err: errors.New("db down")}, nil, nil, testConfig())
	if _, err := m.Rebuild(context.Background()); err == nil {
		t.Error("expected error when source fails")
	}
}

func TestRebuildWithoutSource(t *testing.T) {
	m := NewManager(newFakeEngine(), nil, nil, nil, testConfig())
	if _, err := m.Rebuild(context.Background()); !errors.Is(err, apperrors.ErrInternal) {
		t.Errorf("expected ErrInternal, got %v", err)
	}
}

func TestClearWaitsForEmptyIdleIndex(t *testing.T) {
	eng := newFakeEngine()
	eng.docs["x"] = record.IndexedDocument{DocumentID: "x"}
	m := NewManager(eng, nil, nil, nil, testConfig())

	if err := m.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if len(eng.docs) != 0 {
		t.Error("index not empty after clear")
	}
}

func TestClearTimesOutWhileIndexing(t *testing.T) {
	eng := newFakeEngine()
	eng.isIndexing = true
	cfg := testConfig()
	cfg.ClearTimeout = 50 * time.Millisecond
	m := NewManager(eng, nil, nil, nil, cfg)

	err := m.Clear(context.Background())
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestRefreshReportsFailureWithoutError(t *testing.T) {
	eng := newFakeEngine()
	eng.statsErr = errors.New("stats unavailable")
	m := NewManager(eng, &fakeSource{}, nil, nil, testConfig())

	result := m.Refresh(context.Background())
	if result.Success {
		t.Error("refresh should fail when clear polling fails")
	}
	if result.Error == "" {
		t.Error("failure reason missing from result")
	}
}

func TestRefreshClearsThenRebuilds(t *testing.T) {
	eng := newFakeEngine()
	eng.docs["stale"] = record.IndexedDocument{DocumentID: "stale"}
	source := &fakeSource{records: publishedRecords(5)}
	m := NewManager(eng, source, nil, nil, testConfig())

	result := m.Refresh(context.Background())
	if !result.Success {
		t.Fatalf("Refresh() failed: %s", result.Error)
	}
	if result.Indexed != 5 {
		t.Errorf("Indexed = %d, want 5", result.Indexed)
	}
	if _, ok := eng.docs["stale"]; ok {
		t.Error("stale document survived refresh")
	}
	if len(eng.docs) != 5 {
		t.Errorf("engine holds %d docs, want 5", len(eng.docs))
	}
}

func TestConfigureAppliesSettings(t *testing.T) {
	eng := newFakeEngine()
	m := NewManager(eng, nil, nil, nil, testConfig())

	if err := m.Configure(context.Background()); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if eng.settings == nil {
		t.Fatal("settings not applied")
	}
	if len(eng.settings.SearchableAttributes) == 0 || eng.settings.SearchableAttributes[0] != "compositeText" {
		t.Errorf("searchable attributes = %v, want compositeText first", eng.settings.SearchableAttributes)
	}
	if len(eng.settings.Synonyms) == 0 {
		t.Error("synonym dictionary missing")
	}
}

// invalidatorSpy records invalidation calls.
type invalidatorSpy struct{ calls int }

func (s *invalidatorSpy) Invalidate(ctx context.Context) error {
	s.calls++
	return nil
}

func TestWritesInvalidateCache(t *testing.T) {
	spy := &invalidatorSpy{}
	m := NewManager(newFakeEngine(), nil, spy, nil, testConfig())

	ctx := context.Background()
	if err := m.Upsert(ctx, record.IndexedDocument{DocumentID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if spy.calls != 2 {
		t.Errorf("invalidator called %d times, want 2", spy.calls)
	}
}
