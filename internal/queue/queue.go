// Package queue holds the in-memory playback queue and its cursor.
package queue

import "github.com/genricoloni/hueplay/internal/domain"

// Queue is an ordered snapshot of the catalog plus a cursor.
// The cursor is either -1 or a valid index.
type Queue struct {
	tracks []domain.Track
	index  int
}

// New returns an empty queue with no cursor
func New() *Queue {
	return &Queue{index: -1}
}

// Rebuild snapshots the catalog order and places the cursor on selected,
// matched by path. The cursor is -1 when selected is not in the catalog.
func Rebuild(catalog []domain.Track, selected domain.Track) *Queue {
	q := &Queue{
		tracks: make([]domain.Track, len(catalog)),
		index:  -1,
	}
	copy(q.tracks, catalog)

	for i, t := range q.tracks {
		if t.Path == selected.Path {
			q.index = i
			break
		}
	}
	return q
}

// NextIndex returns the index after i in a queue of length n, wrapping.
// It returns -1 for an empty queue.
func NextIndex(n, i int) int {
	if n <= 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	return (i + 1) % n
}

// PreviousIndex returns the index before i in a queue of length n, wrapping.
// It returns -1 for an empty queue.
func PreviousIndex(n, i int) int {
	if n <= 0 {
		return -1
	}
	if i < 0 {
		return n - 1
	}
	return (i - 1 + n) % n
}

// Next advances the cursor and returns the new index
func (q *Queue) Next() int {
	q.index = NextIndex(len(q.tracks), q.index)
	return q.index
}

// Previous moves the cursor back and returns the new index
func (q *Queue) Previous() int {
	q.index = PreviousIndex(len(q.tracks), q.index)
	return q.index
}

// Current returns the track under the cursor
func (q *Queue) Current() (domain.Track, bool) {
	if q.index < 0 || q.index >= len(q.tracks) {
		return domain.Track{}, false
	}
	return q.tracks[q.index], true
}

// Index returns the cursor
func (q *Queue) Index() int {
	return q.index
}

// Len returns the number of queued tracks
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether the queue has no tracks
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Tracks returns a copy of the queued tracks
func (q *Queue) Tracks() []domain.Track {
	out := make([]domain.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Replace swaps the entry whose path is oldPath for track, keeping its
// position. It reports whether an entry was replaced.
func (q *Queue) Replace(oldPath string, track domain.Track) bool {
	for i, t := range q.tracks {
		if t.Path == oldPath {
			q.tracks[i] = track
			return true
		}
	}
	return false
}
