package intent_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-course-client/internal/intent"
	"go-course-client/internal/pkg/apperror"
	"go-course-client/internal/session"
)

type fakeRemote struct {
	mu    sync.Mutex
	calls []string

	addErr    error
	removeErr error
	clearErr  error
	listIDs   []string
	listErr   error

	// Per-call List results; when exhausted, listIDs is returned.
	listQueue [][]string

	// When set, the call signals *Started and blocks until the release
	// channel is closed, so tests can overlap operations
	// deterministically. listHold is consumed by the first List call
	// only.
	addStarted   chan struct{}
	addRelease   chan struct{}
	listStarted  chan struct{}
	listHold     chan struct{}
	clearStarted chan struct{}
	clearRelease chan struct{}
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) List(context.Context) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "list")
	ids := f.listIDs
	if len(f.listQueue) > 0 {
		ids = f.listQueue[0]
		f.listQueue = f.listQueue[1:]
	}
	hold := f.listHold
	f.listHold = nil
	f.mu.Unlock()

	if f.listStarted != nil {
		f.listStarted <- struct{}{}
	}
	if hold != nil {
		<-hold
	}
	return ids, f.listErr
}

func (f *fakeRemote) Add(_ context.Context, courseID string) error {
	f.record("add:" + courseID)
	if f.addStarted != nil {
		f.addStarted <- struct{}{}
	}
	if f.addRelease != nil {
		<-f.addRelease
	}
	return f.addErr
}

func (f *fakeRemote) Remove(_ context.Context, courseID string) error {
	f.record("remove:" + courseID)
	return f.removeErr
}

func (f *fakeRemote) Clear(context.Context) error {
	f.record("clear")
	if f.clearStarted != nil {
		f.clearStarted <- struct{}{}
	}
	if f.clearRelease != nil {
		<-f.clearRelease
	}
	return f.clearErr
}

type noTokens struct{}

func (noTokens) Token() (string, error) { return "", session.ErrNoToken }

func newStore(remote intent.Remote) *intent.Store {
	return intent.NewStore("cart", remote, session.NewStaticTokenSource("tok"), zap.NewNop())
}

func TestStore_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("success_add_then_remove", func(t *testing.T) {
		remote := &fakeRemote{}
		store := newStore(remote)

		require.NoError(t, store.Toggle(ctx, "42"))
		assert.True(t, store.Contains("42"))
		assert.False(t, store.Pending("42"))
		assert.Equal(t, 1, store.Len())

		require.NoError(t, store.Toggle(ctx, "42"))
		assert.False(t, store.Contains("42"))
		assert.Equal(t, 0, store.Len())
		assert.Equal(t, []string{"add:42", "remove:42"}, remote.Calls())
	})

	t.Run("error_rollback_on_failed_reconciliation", func(t *testing.T) {
		remote := &fakeRemote{addErr: errors.New("offline")}
		store := newStore(remote)

		err := store.Toggle(ctx, "42")
		assert.ErrorIs(t, err, intent.ErrToggleFailed)

		// Membership reverts to its pre-toggle value and the failure is
		// visible, never silently swallowed.
		assert.False(t, store.Contains("42"))
		assert.True(t, store.Failed("42"))
		assert.False(t, store.Pending("42"))
	})

	t.Run("error_unauthenticated_performs_no_local_mutation", func(t *testing.T) {
		remote := &fakeRemote{}
		store := intent.NewStore("cart", remote, noTokens{}, zap.NewNop())

		err := store.Toggle(ctx, "42")
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthenticated))
		assert.False(t, store.Contains("42"))
		assert.Empty(t, remote.Calls(), "no request may be issued without a credential")
	})

	t.Run("error_empty_course_id", func(t *testing.T) {
		store := newStore(&fakeRemote{})
		assert.ErrorIs(t, store.Toggle(ctx, ""), intent.ErrInvalidCourseID)
	})

	t.Run("error_cancelled_while_queued_rolls_back", func(t *testing.T) {
		remote := &fakeRemote{
			addStarted: make(chan struct{}, 1),
			addRelease: make(chan struct{}),
		}
		store := newStore(remote)

		first := make(chan error, 1)
		go func() { first <- store.Toggle(ctx, "42") }()
		<-remote.addStarted

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := store.Toggle(cancelled, "42")
		assert.ErrorIs(t, err, intent.ErrToggleFailed)

		// The abandoned toggle's optimistic flip is rolled back and the
		// failure is visible; the entry is never left pending.
		assert.True(t, store.Contains("42"))
		assert.False(t, store.Pending("42"))
		assert.True(t, store.Failed("42"))

		close(remote.addRelease)
		assert.NoError(t, <-first, "superseded toggle settles without error")
		assert.True(t, store.Contains("42"))
		assert.False(t, store.Pending("42"))
		assert.Equal(t, []string{"add:42"}, remote.Calls(),
			"a cancelled toggle never sends its request")
	})

	t.Run("optimistic_state_visible_while_pending", func(t *testing.T) {
		remote := &fakeRemote{
			addStarted: make(chan struct{}, 1),
			addRelease: make(chan struct{}),
		}
		store := newStore(remote)

		done := make(chan error, 1)
		go func() { done <- store.Toggle(ctx, "42") }()

		<-remote.addStarted
		assert.True(t, store.Contains("42"), "optimistic flip is immediate")
		assert.True(t, store.Pending("42"))

		close(remote.addRelease)
		require.NoError(t, <-done)
		assert.False(t, store.Pending("42"))
	})
}

// Two rapid toggles of the same course must settle to the SECOND
// toggle's intent regardless of which network outcome lands first. The
// second request is only sent after the first's outcome is applied.
func TestStore_Toggle_SecondIntentWins(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, firstErr error) {
		remote := &fakeRemote{
			addErr:     firstErr,
			addStarted: make(chan struct{}, 1),
			addRelease: make(chan struct{}),
		}
		store := newStore(remote)

		first := make(chan error, 1)
		go func() { first <- store.Toggle(ctx, "42") }()
		<-remote.addStarted
		require.True(t, store.Contains("42"))

		second := make(chan error, 1)
		go func() { second <- store.Toggle(ctx, "42") }()

		// The second toggle flips local state immediately, while the
		// first request is still in flight.
		require.Eventually(t, func() bool { return !store.Contains("42") },
			time.Second, 2*time.Millisecond)

		close(remote.addRelease)
		assert.NoError(t, <-first, "superseded toggle settles without error")
		assert.NoError(t, <-second)

		assert.False(t, store.Contains("42"), "settled state follows the last intent")
		assert.False(t, store.Failed("42"))
		assert.Equal(t, []string{"add:42", "remove:42"}, remote.Calls(),
			"requests are serialized, never interleaved")
	}

	t.Run("first_request_succeeds", func(t *testing.T) { run(t, nil) })
	t.Run("first_request_fails", func(t *testing.T) { run(t, errors.New("boom")) })
}

func TestStore_FetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("success_server_is_authoritative", func(t *testing.T) {
		remote := &fakeRemote{listIDs: []string{"7", "9"}}
		store := newStore(remote)

		// Local state before the refresh holds 9 and 11; the server only
		// knows about 7 and 9.
		require.NoError(t, store.Toggle(ctx, "9"))
		require.NoError(t, store.Toggle(ctx, "11"))

		require.NoError(t, store.FetchAll(ctx))

		assert.True(t, store.Contains("7"))
		assert.True(t, store.Contains("9"))
		assert.False(t, store.Contains("11"), "full refresh replaces, never merges")
		assert.Equal(t, 2, store.Len())
	})

	t.Run("stale_response_is_discarded", func(t *testing.T) {
		remote := &fakeRemote{
			listQueue:   [][]string{{"stale"}, {"fresh"}},
			listStarted: make(chan struct{}, 2),
			listHold:    make(chan struct{}),
		}
		store := newStore(remote)
		hold := remote.listHold

		first := make(chan error, 1)
		go func() { first <- store.FetchAll(ctx) }()
		<-remote.listStarted

		// A second refresh is issued and settles while the first
		// response is still in flight.
		require.NoError(t, store.FetchAll(ctx))
		require.True(t, store.Contains("fresh"))

		close(hold)
		assert.NoError(t, <-first, "superseded refresh settles without error")
		assert.True(t, store.Contains("fresh"), "the latest refresh owns the state")
		assert.False(t, store.Contains("stale"))
	})

	t.Run("error_network_failure_keeps_local_state", func(t *testing.T) {
		remote := &fakeRemote{listErr: errors.New("offline")}
		store := newStore(remote)
		require.NoError(t, store.Toggle(ctx, "9"))

		err := store.FetchAll(ctx)
		assert.ErrorIs(t, err, intent.ErrFetchFailed)
		assert.True(t, store.Contains("9"))
	})

	t.Run("error_unauthenticated", func(t *testing.T) {
		store := intent.NewStore("cart", &fakeRemote{}, noTokens{}, zap.NewNop())
		err := store.FetchAll(ctx)
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthenticated))
	})
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("success_empties_immediately", func(t *testing.T) {
		remote := &fakeRemote{}
		store := newStore(remote)
		require.NoError(t, store.Toggle(ctx, "1"))
		require.NoError(t, store.Toggle(ctx, "2"))

		require.NoError(t, store.Clear(ctx))
		assert.Equal(t, 0, store.Len())
		assert.Contains(t, remote.Calls(), "clear")
	})

	t.Run("error_restores_previous_state", func(t *testing.T) {
		remote := &fakeRemote{clearErr: errors.New("offline")}
		store := newStore(remote)
		require.NoError(t, store.Toggle(ctx, "1"))

		err := store.Clear(ctx)
		assert.ErrorIs(t, err, intent.ErrClearFailed)
		assert.True(t, store.Contains("1"))
	})

	t.Run("error_restore_keeps_toggles_settled_during_clear", func(t *testing.T) {
		remote := &fakeRemote{
			clearErr:     errors.New("offline"),
			clearStarted: make(chan struct{}, 1),
			clearRelease: make(chan struct{}),
		}
		store := newStore(remote)
		require.NoError(t, store.Toggle(ctx, "1"))

		done := make(chan error, 1)
		go func() { done <- store.Clear(ctx) }()
		<-remote.clearStarted

		// While the clear is in flight the user adds 5, then adds and
		// removes 6. Both settle against the server.
		require.NoError(t, store.Toggle(ctx, "5"))
		require.NoError(t, store.Toggle(ctx, "6"))
		require.NoError(t, store.Toggle(ctx, "6"))
		require.True(t, store.Contains("5"))

		close(remote.clearRelease)
		assert.ErrorIs(t, <-done, intent.ErrClearFailed)

		// The restore brings 1 back but never undoes what the user did
		// after the clear.
		assert.True(t, store.Contains("1"))
		assert.True(t, store.Contains("5"))
		assert.False(t, store.Contains("6"))
		assert.Equal(t, 2, store.Len())
	})
}

func TestStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	store := newStore(remote)
	require.NoError(t, store.Toggle(ctx, "b"))
	require.NoError(t, store.Toggle(ctx, "a"))

	entries := store.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].CourseID, "snapshot is ordered by course id")
	assert.Equal(t, "b", entries[1].CourseID)
	assert.True(t, entries[0].Member)
}
