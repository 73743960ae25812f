package usercache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
	"github.com/campushq/go-placement-client/usercache"
	"github.com/campushq/go-placement-client/userdata"
)

type fakeSession struct {
	accessToken string
	userID      string
}

func (s *fakeSession) AccessToken() string { return s.accessToken }
func (s *fakeSession) UserID() string      { return s.userID }

// fakeFetcher scripts the backend read. When gate is set, FetchUserData
// blocks until the gate is closed so a test can line up concurrent
// callers.
type fakeFetcher struct {
	calls   atomic.Int32
	entered chan struct{} // closed on first call
	gate    chan struct{}
	doc     *userdata.Document
	err     error

	enterOnce sync.Once
}

func (f *fakeFetcher) FetchUserData(ctx context.Context, userID string) (*userdata.Document, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func validDocument() *userdata.Document {
	return &userdata.Document{
		UserID:   "user-42",
		RoleType: "Student",
		Personal: userdata.Personal{FirstName: "Asha", LastName: "Rao"},
	}
}

func newTestCache(t *testing.T, fetcher *fakeFetcher, sess *fakeSession) *usercache.Cache {
	t.Helper()
	cache, err := usercache.New(fetcher, sess)
	require.NoError(t, err)
	return cache
}

func TestFetchAndCacheStoresValidatedDocument(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	doc, err := cache.FetchAndCache(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user-42", doc.UserID)
	require.True(t, cache.HasData())
	require.Same(t, doc, cache.Get())
}

func TestFetchAndCacheFailsFastWithoutUserID(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok"})

	_, err := cache.FetchAndCache(context.Background())
	require.ErrorIs(t, err, clienterrors.ErrUnauthenticated)
	require.Equal(t, int32(0), fetcher.calls.Load())
}

func TestConcurrentFetchesCoalesceToOneBackendCall(t *testing.T) {
	fetcher := &fakeFetcher{
		doc:     validDocument(),
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	var wg sync.WaitGroup
	docs := make([]*userdata.Document, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		docs[0], errs[0] = cache.FetchAndCache(context.Background())
	}()
	<-fetcher.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		docs[1], errs[1] = cache.FetchAndCache(context.Background())
	}()

	// Give the second caller time to join the in-flight fetch, then
	// let the backend respond.
	time.Sleep(200 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, int32(1), fetcher.calls.Load(), "concurrent callers must share one backend call")
	require.Same(t, docs[0], docs[1], "both callers receive the same resolved document")
}

func TestValidationFailureLeavesCacheUnchanged(t *testing.T) {
	invalid := validDocument()
	invalid.UserID = "" // missing required field

	fetcher := &fakeFetcher{doc: invalid}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	_, err := cache.FetchAndCache(context.Background())
	require.ErrorIs(t, err, clienterrors.ErrValidationFailed)
	require.Nil(t, cache.Get())
	require.False(t, cache.IsFetching(), "fetching flag cleared after a failed attempt")
}

func TestValidationFailureKeepsPreviousDocument(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	good, err := cache.FetchAndCache(context.Background())
	require.NoError(t, err)

	invalid := validDocument()
	invalid.UserID = ""
	fetcher.doc = invalid

	_, err = cache.InvalidateAndRefetch(context.Background())
	require.ErrorIs(t, err, clienterrors.ErrValidationFailed)
	// Invalidate cleared the cache before the refetch, and the bad
	// payload never replaced it.
	require.Nil(t, cache.Get())
	require.NotNil(t, good)
}

func TestSubscribersObserveEveryReplacement(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	var observed []*userdata.Document
	unsubscribe := cache.Subscribe(func(doc *userdata.Document) {
		observed = append(observed, doc)
	})

	_, err := cache.FetchAndCache(context.Background())
	require.NoError(t, err)

	_, err = cache.InvalidateAndRefetch(context.Background())
	require.NoError(t, err)

	// First fetch, then the transient nil, then the repopulated doc.
	require.Len(t, observed, 3)
	require.NotNil(t, observed[0])
	require.Nil(t, observed[1])
	require.NotNil(t, observed[2])

	unsubscribe()
	cache.Clear()
	require.Len(t, observed, 3, "unsubscribed listeners receive no further notifications")
}

func TestClearNotifiesSubscribersWithNil(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	_, err := cache.FetchAndCache(context.Background())
	require.NoError(t, err)

	var got *userdata.Document = validDocument()
	cache.Subscribe(func(doc *userdata.Document) { got = doc })

	cache.Clear()
	require.Nil(t, got)
	require.False(t, cache.HasData())
}

func TestHandleWithoutAccessTokenReportsEmptyNotLoading(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{})

	handle := cache.NewHandle(context.Background())
	defer handle.Close()

	require.Nil(t, handle.Document())
	require.False(t, handle.Loading())
	require.Equal(t, int32(0), fetcher.calls.Load())
}

func TestHandleTriggersInitialFetch(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	handle := cache.NewHandle(context.Background())
	defer handle.Close()

	require.Eventually(t, func() bool {
		return !handle.Loading() && handle.Document() != nil
	}, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), fetcher.calls.Load())
}

func TestSecondHandleReusesCachedDocument(t *testing.T) {
	fetcher := &fakeFetcher{doc: validDocument()}
	cache := newTestCache(t, fetcher, &fakeSession{accessToken: "tok", userID: "user-42"})

	first := cache.NewHandle(context.Background())
	defer first.Close()
	require.Eventually(t, func() bool {
		return first.Document() != nil
	}, 5*time.Second, 5*time.Millisecond)

	second := cache.NewHandle(context.Background())
	defer second.Close()

	require.NotNil(t, second.Document())
	require.False(t, second.Loading())
	require.Equal(t, int32(1), fetcher.calls.Load(), "mounting a second consumer must not refetch")
}
