package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, externalID string) (map[string]any, error)
}

func (f *stubFetcher) Title(ctx context.Context, externalID string) (map[string]any, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, externalID)
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func detailPayload() map[string]any {
	return map[string]any{
		"plot":           "A thief steals secrets through dream-sharing.",
		"runtimeSeconds": float64(8880),
		"credits": map[string]any{
			"directors": []any{map[string]any{"id": "nm0634240", "name": "Christopher Nolan"}},
		},
	}
}

func TestEnricher_MergesDetails(t *testing.T) {
	cache := NewCache()
	cache.RememberLight([]LightRecord{
		{CatalogID: "123", Title: "Inception", Year: "2010", IMDBIDRaw: "tt1375666"},
	})

	fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
		if externalID != "tt1375666" {
			t.Errorf("fetched externalID = %q, want tt1375666", externalID)
		}
		return detailPayload(), nil
	}}

	e := NewEnricher(cache, fetcher, zerolog.Nop())
	if got := e.Enrich(context.Background(), "123"); got != OutcomeMerged {
		t.Fatalf("Enrich() = %v, want %v", got, OutcomeMerged)
	}

	rec, _ := cache.Get("123")
	if rec.Synopsis != "A thief steals secrets through dream-sharing." {
		t.Errorf("Synopsis = %q, want merged plot", rec.Synopsis)
	}
	if rec.Runtime != "2h 28m" {
		t.Errorf("Runtime = %q, want %q", rec.Runtime, "2h 28m")
	}
	if len(rec.Credits.Directors) != 1 || rec.Credits.Directors[0].Name != "Christopher Nolan" {
		t.Errorf("Directors = %v, want Christopher Nolan", rec.Credits.Directors)
	}
	if !rec.DetailsFetched {
		t.Error("DetailsFetched = false, want true after merge")
	}
	if rec.Title != "Inception" {
		t.Errorf("Title = %q, want light field preserved", rec.Title)
	}
}

func TestEnricher_SkipsWithoutExternalID(t *testing.T) {
	tests := []struct {
		name string
		seed []LightRecord
	}{
		{"no record", nil},
		{"unknown id", []LightRecord{{CatalogID: "5", Title: "Mystery", IMDBIDRaw: nil}}},
		{"known absent id", []LightRecord{{CatalogID: "5", Title: "Mystery", IMDBIDRaw: ""}}},
		{"unparseable id", []LightRecord{{CatalogID: "5", Title: "Mystery", IMDBIDRaw: "n/a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache()
			cache.RememberLight(tt.seed)

			fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
				return detailPayload(), nil
			}}

			e := NewEnricher(cache, fetcher, zerolog.Nop())
			if got := e.Enrich(context.Background(), "5"); got != OutcomeSkipped {
				t.Errorf("Enrich() = %v, want %v", got, OutcomeSkipped)
			}
			if fetcher.callCount() != 0 {
				t.Errorf("fetcher calls = %d, want 0", fetcher.callCount())
			}
		})
	}
}

func TestEnricher_SkipsWhenDetailsPresent(t *testing.T) {
	cache := NewCache()
	cache.RememberLight([]LightRecord{{CatalogID: "9", IMDBIDRaw: "tt0000009"}})
	cache.MergeDetails("9", Details{Synopsis: "Already here.", DetailsFetched: true})

	fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
		return detailPayload(), nil
	}}

	e := NewEnricher(cache, fetcher, zerolog.Nop())
	if got := e.Enrich(context.Background(), "9"); got != OutcomeSkipped {
		t.Errorf("Enrich() = %v, want %v", got, OutcomeSkipped)
	}
	if fetcher.callCount() != 0 {
		t.Errorf("fetcher calls = %d, want 0", fetcher.callCount())
	}
}

func TestEnricher_RetriesAfterEmptyResult(t *testing.T) {
	cache := NewCache()
	cache.RememberLight([]LightRecord{{CatalogID: "9", IMDBIDRaw: "tt0000009"}})

	fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
		return map[string]any{}, nil
	}}

	e := NewEnricher(cache, fetcher, zerolog.Nop())
	if got := e.Enrich(context.Background(), "9"); got != OutcomeMerged {
		t.Fatalf("Enrich() = %v, want %v", got, OutcomeMerged)
	}

	rec, _ := cache.Get("9")
	if !rec.DetailsFetched {
		t.Fatal("DetailsFetched = false, want true after empty merge")
	}

	// Both synopsis and credits came back empty, so a revisit fetches again.
	if got := e.Enrich(context.Background(), "9"); got != OutcomeMerged {
		t.Errorf("Enrich() on revisit = %v, want %v", got, OutcomeMerged)
	}
	if fetcher.callCount() != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.callCount())
	}
}

func TestEnricher_FailureLeavesCacheUntouched(t *testing.T) {
	cache := NewCache()
	cache.RememberLight([]LightRecord{
		{CatalogID: "9", Title: "Heat", IMDBIDRaw: "tt0113277"},
	})

	fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
		return nil, errors.New("title service exploded")
	}}

	e := NewEnricher(cache, fetcher, zerolog.Nop())
	if got := e.Enrich(context.Background(), "9"); got != OutcomeFailed {
		t.Fatalf("Enrich() = %v, want %v", got, OutcomeFailed)
	}

	rec, _ := cache.Get("9")
	if rec.DetailsFetched {
		t.Error("DetailsFetched = true after failure, want false so a revisit retries")
	}
	if rec.Synopsis != "" {
		t.Errorf("Synopsis = %q, want untouched", rec.Synopsis)
	}
	if rec.Title != "Heat" {
		t.Errorf("Title = %q, want light field preserved", rec.Title)
	}
}

func TestEnricher_StaleFetchNeverWrites(t *testing.T) {
	cache := NewCache()
	cache.RememberLight([]LightRecord{
		{CatalogID: "A", Title: "First", IMDBIDRaw: "tt0000001"},
		{CatalogID: "B", Title: "Second", IMDBIDRaw: "tt0000002"},
	})

	entered := make(chan struct{})
	release := make(chan struct{})

	fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
		if externalID == "tt0000001" {
			close(entered)
			// Ignore cancellation and deliver a late result anyway, to
			// prove the merge guard alone keeps it out of the cache.
			<-release
			return map[string]any{"plot": "stale synopsis"}, nil
		}
		return map[string]any{"plot": "fresh synopsis"}, nil
	}}

	e := NewEnricher(cache, fetcher, zerolog.Nop())

	first := make(chan Outcome, 1)
	go func() {
		first <- e.Enrich(context.Background(), "A")
	}()

	<-entered
	if got := e.Enrich(context.Background(), "B"); got != OutcomeMerged {
		t.Fatalf("Enrich(B) = %v, want %v", got, OutcomeMerged)
	}
	close(release)

	if got := <-first; got != OutcomeCanceled {
		t.Errorf("Enrich(A) = %v, want %v", got, OutcomeCanceled)
	}

	recA, _ := cache.Get("A")
	if recA.Synopsis != "" {
		t.Errorf("A Synopsis = %q, want untouched by stale result", recA.Synopsis)
	}
	if recA.DetailsFetched {
		t.Error("A DetailsFetched = true, want untouched by stale result")
	}

	recB, _ := cache.Get("B")
	if recB.Synopsis != "fresh synopsis" {
		t.Errorf("B Synopsis = %q, want fresh result", recB.Synopsis)
	}
}

func TestEnricher_CallerCancellation(t *testing.T) {
	cache := NewCache()
	cache.RememberLight([]LightRecord{{CatalogID: "9", IMDBIDRaw: "tt0000009"}})

	fetcher := &stubFetcher{fn: func(ctx context.Context, externalID string) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	ctx, cancel := context.WithCancel(context.Background())

	e := NewEnricher(cache, fetcher, zerolog.Nop())
	done := make(chan Outcome, 1)
	go func() {
		done <- e.Enrich(ctx, "9")
	}()

	cancel()

	if got := <-done; got != OutcomeCanceled {
		t.Errorf("Enrich() = %v, want %v", got, OutcomeCanceled)
	}

	rec, _ := cache.Get("9")
	if rec.DetailsFetched || rec.Synopsis != "" {
		t.Errorf("record = %+v, want untouched after cancellation", rec)
	}
}
