package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"alice-hq/hassil-parser/internal/fixtures"
	"alice-hq/hassil-parser/pkg/events"
	"alice-hq/hassil-parser/pkg/intents"
	"alice-hq/hassil-parser/pkg/orchestrator"
	"alice-hq/hassil-parser/pkg/source"
	"alice-hq/hassil-parser/pkg/storage"

	"github.com/google/go-cmp/cmp"
)

// fakeSource serves a fixed batch or error.
type fakeSource struct {
	batch   func() *intents.Batch
	err     error
	block   chan struct{}
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (*intents.Batch, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.batch(), nil
}

func fixtureBatch(t *testing.T) func() *intents.Batch {
	t.Helper()
	return func() *intents.Batch {
		batch, err := source.ReadFS(fixtures.IntentFS(), "de", fixtures.Logger(nil))
		if err != nil {
			t.Errorf("ReadFS() error = %v", err)
			return intents.NewBatch("de")
		}
		return batch
	}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type failingStore struct {
	storage.Store
}

func (failingStore) Upsert(context.Context, []intents.Row) (storage.Result, error) {
	return storage.Result{}, &storage.StorageError{Backend: "fake", Op: "upsert", Err: errors.New("disk full")}
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []string
	upserts  [][3]int
	publish  []string
}

func (r *fakeRecorder) RecordSync(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *fakeRecorder) RecordUpsert(inserted, updated, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = append(r.upserts, [3]int{inserted, updated, skipped})
}

func (r *fakeRecorder) RecordPublish(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish = append(r.publish, status)
}

func newOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Options{
		External: true,
		Logger:   fixtures.Logger(nil),
	})
}

func TestSyncer_Run(t *testing.T) {
	src := &fakeSource{batch: fixtureBatch(t)}
	store := storage.NewMemoryStore()
	pub := &fakePublisher{}
	rec := &fakeRecorder{}

	s := New(src, store, pub, newOrchestrator(), Options{Logger: fixtures.Logger(nil), Recorder: rec})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.RunID == "" {
		t.Error("expected run ID")
	}
	if report.Domains != 2 {
		t.Errorf("Domains = %d, want 2", report.Domains)
	}
	if report.Intents != 6 {
		t.Errorf("Intents = %d, want 6", report.Intents)
	}
	if report.Templates+report.Dropped != report.Intents {
		t.Errorf("templates %d + dropped %d != intents %d", report.Templates, report.Dropped, report.Intents)
	}
	if report.Inserted != report.Templates || report.Updated != 0 {
		t.Errorf("first run inserted=%d updated=%d, want inserted=%d", report.Inserted, report.Updated, report.Templates)
	}
	if store.Len() != report.Templates {
		t.Errorf("stored %d templates, want %d", store.Len(), report.Templates)
	}
	if !report.Published {
		t.Error("expected event published")
	}
	if len(pub.events) != 1 || pub.events[0].Event != events.TemplatesUpdated || pub.events[0].RunID != report.RunID {
		t.Errorf("unexpected events %+v", pub.events)
	}
	if pub.events[0].Source != intents.DefaultSource {
		t.Errorf("event source = %q, want %q", pub.events[0].Source, intents.DefaultSource)
	}
	if s.LastReport() != report {
		t.Error("expected LastReport to return the run's report")
	}

	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Inserted != 0 || second.Updated != report.Templates {
		t.Errorf("second run inserted=%d updated=%d, want updated=%d", second.Inserted, second.Updated, report.Templates)
	}
	if second.RunID == report.RunID {
		t.Error("expected a new run ID per run")
	}

	if diff := cmp.Diff([]string{StatusSuccess, StatusSuccess}, rec.statuses); diff != "" {
		t.Errorf("recorded statuses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"success", "success"}, rec.publish); diff != "" {
		t.Errorf("recorded publishes mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncer_ExpandDeterministic(t *testing.T) {
	batch := fixtureBatch(t)()

	var want []intents.Row
	for _, workers := range []int{1, 2, 8} {
		s := New(&fakeSource{}, storage.NewMemoryStore(), nil, newOrchestrator(),
			Options{Workers: workers, Logger: fixtures.Logger(nil)})
		rows, err := s.Expand(context.Background(), batch, nil)
		if err != nil {
			t.Fatalf("Expand(workers=%d) error = %v", workers, err)
		}
		if want == nil {
			want = rows
			continue
		}
		if diff := cmp.Diff(want, rows); diff != "" {
			t.Errorf("rows with %d workers differ (-want +got):\n%s", workers, diff)
		}
	}

	if len(want) == 0 || want[0].Domain != "climate" {
		t.Fatalf("expected climate rows first, got %+v", want)
	}
}

func TestSyncer_DomainFailureSkipped(t *testing.T) {
	src := &fakeSource{batch: func() *intents.Batch {
		b := fixtureBatch(t)()
		b.Add("broken", nil)
		return b
	}}
	store := storage.NewMemoryStore()

	s := New(src, store, nil, newOrchestrator(), Options{Logger: fixtures.Logger(nil)})
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"broken"}, report.FailedDomains); diff != "" {
		t.Errorf("failed domains mismatch (-want +got):\n%s", diff)
	}
	if report.Domains != 2 {
		t.Errorf("Domains = %d, want 2", report.Domains)
	}
	if report.Published {
		t.Error("expected nothing published without a publisher")
	}
}

func TestSyncer_FetchError(t *testing.T) {
	rec := &fakeRecorder{}
	store := storage.NewMemoryStore()
	src := &fakeSource{err: errors.New("connection refused")}

	s := New(src, store, nil, newOrchestrator(), Options{Logger: fixtures.Logger(nil), Recorder: rec})
	_, err := s.Run(context.Background())

	var ferr *source.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("expected nothing stored")
	}
	if s.LastReport() != nil {
		t.Error("expected no report after failed run")
	}
	if diff := cmp.Diff([]string{StatusFetchError}, rec.statuses); diff != "" {
		t.Errorf("recorded statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncer_StorageError(t *testing.T) {
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	s := New(&fakeSource{batch: fixtureBatch(t)}, failingStore{}, pub, newOrchestrator(),
		Options{Logger: fixtures.Logger(nil), Recorder: rec})

	_, err := s.Run(context.Background())
	var serr *storage.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Error("expected no event after storage failure")
	}
	if diff := cmp.Diff([]string{StatusStorageError}, rec.statuses); diff != "" {
		t.Errorf("recorded statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncer_PublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	rec := &fakeRecorder{}
	s := New(&fakeSource{batch: fixtureBatch(t)}, storage.NewMemoryStore(), pub, newOrchestrator(),
		Options{Logger: fixtures.Logger(nil), Recorder: rec})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Published {
		t.Error("expected Published false")
	}
	if diff := cmp.Diff([]string{"error"}, rec.publish); diff != "" {
		t.Errorf("recorded publishes mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncer_DryRun(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &fakePublisher{}
	s := New(&fakeSource{batch: fixtureBatch(t)}, store, pub, newOrchestrator(),
		Options{DryRun: true, Logger: fixtures.Logger(nil)})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.DryRun || report.Templates == 0 {
		t.Errorf("unexpected dry-run report %+v", report)
	}
	if store.Len() != 0 || len(pub.events) != 0 {
		t.Error("expected dry run to write and publish nothing")
	}
}

func TestSyncer_RunsAreSerialised(t *testing.T) {
	src := &fakeSource{batch: fixtureBatch(t), block: make(chan struct{})}
	s := New(src, storage.NewMemoryStore(), nil, newOrchestrator(), Options{Logger: fixtures.Logger(nil)})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Run(context.Background()); err != nil {
				t.Errorf("Run() error = %v", err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	if got := src.maxSeen.Load(); got != 1 {
		t.Errorf("expected one fetch at a time, saw %d", got)
	}
}

func TestSyncer_Canceled(t *testing.T) {
	src := &fakeSource{batch: fixtureBatch(t), block: make(chan struct{})}
	rec := &fakeRecorder{}
	s := New(src, storage.NewMemoryStore(), nil, newOrchestrator(),
		Options{Logger: fixtures.Logger(nil), Recorder: rec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if diff := cmp.Diff([]string{StatusCanceled}, rec.statuses); diff != "" {
		t.Errorf("recorded statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncer_Timeout(t *testing.T) {
	src := &fakeSource{batch: fixtureBatch(t), block: make(chan struct{})}
	rec := &fakeRecorder{}
	s := New(src, storage.NewMemoryStore(), nil, newOrchestrator(),
		Options{Logger: fixtures.Logger(nil), Recorder: rec, Timeout: 20 * time.Millisecond})

	if _, err := s.Run(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if diff := cmp.Diff([]string{StatusCanceled}, rec.statuses); diff != "" {
		t.Errorf("recorded statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncer_Notify(t *testing.T) {
	s := New(&fakeSource{}, storage.NewMemoryStore(), nil, newOrchestrator(), Options{Logger: fixtures.Logger(nil)})
	if err := s.Notify(context.Background()); err == nil {
		t.Error("expected error without a publisher")
	}

	pub := &fakePublisher{}
	s = New(&fakeSource{}, storage.NewMemoryStore(), pub, newOrchestrator(), Options{Logger: fixtures.Logger(nil)})
	if err := s.Notify(context.Background()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Event != events.TemplatesUpdated {
		t.Errorf("unexpected events %+v", pub.events)
	}
}
