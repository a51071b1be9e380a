package queue

import (
	"testing"

	"github.com/genricoloni/hueplay/internal/domain"
)

func tracks(paths ...string) []domain.Track {
	out := make([]domain.Track, len(paths))
	for i, p := range paths {
		out[i] = domain.Track{Path: p}
	}
	return out
}

func TestRebuild(t *testing.T) {
	catalog := tracks("/m/a.mp3", "/m/b.mp3", "/m/c.mp3")

	tests := []struct {
		name      string
		catalog   []domain.Track
		selected  string
		wantIndex int
	}{
		{"Selected In Middle", catalog, "/m/b.mp3", 1},
		{"Selected First", catalog, "/m/a.mp3", 0},
		{"Not Found", catalog, "/m/z.mp3", -1},
		{"Empty Catalog", nil, "/m/a.mp3", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Rebuild(tt.catalog, domain.Track{Path: tt.selected})
			if q.Index() != tt.wantIndex {
				t.Errorf("Index: want %d, got %d", tt.wantIndex, q.Index())
			}
			if q.Len() != len(tt.catalog) {
				t.Errorf("Len: want %d, got %d", len(tt.catalog), q.Len())
			}
		})
	}
}

func TestRebuild_SnapshotsCatalog(t *testing.T) {
	catalog := tracks("/m/a.mp3", "/m/b.mp3")
	q := Rebuild(catalog, catalog[0])

	catalog[0] = domain.Track{Path: "/m/changed.mp3"}

	cur, ok := q.Current()
	if !ok || cur.Path != "/m/a.mp3" {
		t.Errorf("queue should not alias the catalog slice, got %+v", cur)
	}
}

func TestSkipScenario(t *testing.T) {
	q := Rebuild(tracks("A", "B", "C"), domain.Track{Path: "B"})

	if got := q.Next(); got != 2 {
		t.Fatalf("first Next: want 2, got %d", got)
	}
	if got := q.Next(); got != 0 {
		t.Fatalf("second Next should wrap to 0, got %d", got)
	}
	cur, _ := q.Current()
	if cur.Path != "A" {
		t.Errorf("Current: want A, got %s", cur.Path)
	}
	if got := q.Previous(); got != 2 {
		t.Errorf("Previous from 0 should wrap to 2, got %d", got)
	}
}

func TestWraparoundInverse(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for i := 0; i < n; i++ {
			if got := PreviousIndex(n, NextIndex(n, i)); got != i {
				t.Errorf("n=%d i=%d: previous(next(i)) = %d", n, i, got)
			}
			if got := NextIndex(n, PreviousIndex(n, i)); got != i {
				t.Errorf("n=%d i=%d: next(previous(i)) = %d", n, i, got)
			}
		}
	}
}

func TestEmptyQueueIsNoop(t *testing.T) {
	q := New()

	if got := q.Next(); got != -1 {
		t.Errorf("Next on empty: want -1, got %d", got)
	}
	if got := q.Previous(); got != -1 {
		t.Errorf("Previous on empty: want -1, got %d", got)
	}
	if _, ok := q.Current(); ok {
		t.Error("Current on empty queue should report false")
	}
	if !q.IsEmpty() {
		t.Error("IsEmpty should be true")
	}
}

func TestUnsetCursorNavigation(t *testing.T) {
	if got := NextIndex(3, -1); got != 0 {
		t.Errorf("NextIndex from -1: want 0, got %d", got)
	}
	if got := PreviousIndex(3, -1); got != 2 {
		t.Errorf("PreviousIndex from -1: want 2, got %d", got)
	}
}

func TestReplace(t *testing.T) {
	q := Rebuild(tracks("/m/a.flac", "/m/b.mp3"), domain.Track{Path: "/m/a.flac"})

	if !q.Replace("/m/a.flac", domain.Track{Path: "/m/a.mp3"}) {
		t.Fatal("Replace should find the flac entry")
	}
	cur, _ := q.Current()
	if cur.Path != "/m/a.mp3" {
		t.Errorf("entry should be replaced in place, got %s", cur.Path)
	}
	if q.Index() != 0 {
		t.Errorf("cursor should not move, got %d", q.Index())
	}
	if q.Replace("/m/missing.flac", domain.Track{Path: "/m/x.mp3"}) {
		t.Error("Replace should report false for unknown paths")
	}
}
