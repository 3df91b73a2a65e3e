package intent

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"go-course-client/internal/session"
)

// Remote is the reconciliation surface an intent store talks to. Cart
// and wishlist provide gateway-backed implementations bound to their
// own endpoints. Add/Remove may be idempotent server-side but the store
// never assumes it: any error is a failed reconciliation.
type Remote interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, courseID string) error
	Remove(ctx context.Context, courseID string) error
	Clear(ctx context.Context) error
}

// Entry is a read-only snapshot of one course's intent state.
type Entry struct {
	CourseID string
	Member   bool
	Pending  bool
	Failed   bool
}

type entry struct {
	member  bool
	pending bool
	failed  bool

	// seq increases on every toggle of this course; a network outcome is
	// applied only when it still carries the latest seq. This subsumes
	// stale-response suppression and makes the settled state follow the
	// last user intent rather than the last response to arrive.
	seq uint64

	// turn serializes same-course requests: the second toggle's request
	// is sent only after the first's outcome has been applied.
	turn chan struct{}
}

// Store keeps a locally authoritative view of which courses the user
// intends to buy or save. Mutations are optimistic: local state flips
// immediately and is reconciled with the server afterwards; a failed
// reconciliation rolls the flip back and marks the entry failed.
//
// The store is the single writer of its state. Callers construct one
// instance, pass it by reference, and read through snapshot accessors;
// only the store's own methods mutate the entry map.
type Store struct {
	kind   string
	remote Remote
	tokens session.TokenSource
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry

	// gen increases on every wholesale replacement (FetchAll, Clear).
	// In-flight toggle outcomes from an older generation are discarded.
	gen uint64

	// fetchSeq increases every time a wholesale replacement is ISSUED.
	// A List response is applied only when it still carries the latest
	// fetchSeq, so a slow response never overwrites a newer one.
	fetchSeq uint64

	// clearing counts in-flight Clear requests. While non-zero, settled
	// non-member entries are kept so a failed clear can tell a course
	// removed after the clear apart from one it never saw.
	clearing int
}

func NewStore(kind string, remote Remote, tokens session.TokenSource, logger *zap.Logger) *Store {
	return &Store{
		kind:    kind,
		remote:  remote,
		tokens:  tokens,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Toggle flips the course's local membership immediately, then
// reconciles with the server. It returns once this toggle's outcome is
// settled: nil on success or when a later toggle superseded it, a typed
// error after a rollback.
//
// Toggling requires confirmed identity: without a credential there is
// no optimistic flip and no local mutation at all.
func (s *Store) Toggle(ctx context.Context, courseID string) error {
	if courseID == "" {
		return ErrInvalidCourseID
	}
	if _, err := s.tokens.Token(); err != nil {
		return ErrUnauthenticated.WithCause(err)
	}

	s.mu.Lock()
	e := s.entryLocked(courseID)
	e.member = !e.member
	e.pending = true
	e.failed = false
	e.seq++
	seq := e.seq
	gen := s.gen
	desired := e.member
	turn := e.turn
	s.mu.Unlock()

	s.logger.Debug("toggle issued",
		zap.String("store", s.kind),
		zap.String("course_id", courseID),
		zap.Bool("desired", desired),
	)

	// Wait for our turn; same-course toggles never interleave their
	// read-modify-write.
	select {
	case turn <- struct{}{}:
	case <-ctx.Done():
		// Abandoning the queue slot must not leave the optimistic flip
		// behind: roll it back and mark the entry failed, unless a newer
		// intent already owns it. The seq bump keeps the outcome of the
		// request ahead of us in the queue from landing on the
		// rolled-back entry.
		s.mu.Lock()
		defer s.mu.Unlock()
		if e.seq != seq || s.gen != gen {
			return nil
		}
		e.member = !desired
		e.pending = false
		e.failed = true
		e.seq++
		return ErrToggleFailed.WithCause(ctx.Err())
	}
	defer func() { <-turn }()

	s.mu.Lock()
	superseded := e.seq != seq || s.gen != gen
	s.mu.Unlock()
	if superseded {
		// A later toggle or a full refresh owns the entry now; sending
		// our request would race a stale intent against a fresh one.
		return nil
	}

	var err error
	if desired {
		err = s.remote.Add(ctx, courseID)
	} else {
		err = s.remote.Remove(ctx, courseID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e.seq != seq || s.gen != gen {
		// Outcome arrived late; the state already reflects a newer
		// intent. Drop it.
		return nil
	}

	if err != nil {
		// Roll back to the pre-toggle value and surface the failure. No
		// automatic retry: the caller decides whether to toggle again.
		e.member = !desired
		e.pending = false
		e.failed = true
		s.logger.Warn("toggle reconciliation failed",
			zap.String("store", s.kind),
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		return ErrToggleFailed.WithCause(err)
	}

	e.pending = false
	e.failed = false
	if !e.member && s.clearing == 0 {
		delete(s.entries, courseID)
	}
	return nil
}

// FetchAll replaces the entire local set with the server's current set.
// This is a full reconciliation, not a merge: the server is
// authoritative, and any pending or failed local entries are dropped.
func (s *Store) FetchAll(ctx context.Context) error {
	if _, err := s.tokens.Token(); err != nil {
		return ErrUnauthenticated.WithCause(err)
	}

	s.mu.Lock()
	s.fetchSeq++
	fseq := s.fetchSeq
	s.mu.Unlock()

	ids, err := s.remote.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if fseq != s.fetchSeq {
		// A newer wholesale replacement was issued while this response
		// was in flight; its result owns the state now.
		return nil
	}
	if err != nil {
		return ErrFetchFailed.WithCause(err)
	}

	s.gen++
	s.entries = make(map[string]*entry, len(ids))
	for _, id := range ids {
		e := newEntry()
		e.member = true
		s.entries[id] = e
	}

	s.logger.Debug("full reconciliation applied",
		zap.String("store", s.kind),
		zap.Int("count", len(ids)),
	)
	return nil
}

// Refresh is FetchAll under the name the CLI surfaces.
func (s *Store) Refresh(ctx context.Context) error {
	return s.FetchAll(ctx)
}

// Clear empties the local set immediately, then issues the bulk remove.
// On failure the pre-clear state is restored and the error surfaced,
// unless a newer wholesale replacement already took over.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.tokens.Token(); err != nil {
		return ErrUnauthenticated.WithCause(err)
	}

	s.mu.Lock()
	prev := s.entries
	s.gen++
	gen := s.gen
	s.fetchSeq++
	s.clearing++
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	err := s.remote.Clear(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearing--

	if err != nil {
		if s.gen == gen {
			// Outcomes of requests issued before the clear are discarded
			// by the generation bump, so nothing is pending anymore.
			for _, e := range prev {
				e.pending = false
			}
			// Toggles issued while the clear was in flight carry newer
			// intent than the restored snapshot: they overlay it, and a
			// course removed after the clear stays removed.
			for id, e := range s.entries {
				if e.member || e.pending || e.failed {
					prev[id] = e
				} else {
					delete(prev, id)
				}
			}
			s.entries = prev
		}
		s.pruneLocked()
		s.logger.Warn("clear failed",
			zap.String("store", s.kind),
			zap.Error(err),
		)
		return ErrClearFailed.WithCause(err)
	}
	s.pruneLocked()
	return nil
}

// pruneLocked drops settled non-member entries once no clear is in
// flight anymore; they were only kept as removal markers for the
// restore path.
func (s *Store) pruneLocked() {
	if s.clearing != 0 {
		return
	}
	for id, e := range s.entries {
		if !e.member && !e.pending && !e.failed {
			delete(s.entries, id)
		}
	}
}

// Contains reports local membership, including optimistic state.
func (s *Store) Contains(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[courseID]
	return ok && e.member
}

// Pending reports whether a reconciliation request is in flight for the
// course.
func (s *Store) Pending(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[courseID]
	return ok && e.pending
}

// Failed reports whether the last reconciliation attempt for the course
// failed and its state is unconfirmed.
func (s *Store) Failed(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[courseID]
	return ok && e.failed
}

// Len counts current members.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.member {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of every tracked entry ordered by course ID.
// Callers never see, let alone mutate, the live map.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, Entry{
			CourseID: id,
			Member:   e.member,
			Pending:  e.pending,
			Failed:   e.failed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out
}

func (s *Store) entryLocked(courseID string) *entry {
	e, ok := s.entries[courseID]
	if !ok {
		e = newEntry()
		s.entries[courseID] = e
	}
	return e
}

func newEntry() *entry {
	return &entry{turn: make(chan struct{}, 1)}
}
