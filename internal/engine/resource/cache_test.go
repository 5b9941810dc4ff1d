package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct{ id int }

// counting wraps a synchronous loader and counts calls.
type counting struct {
	calls   int
	created int
	freed   int
	fail    error
}

func (l *counting) load(complete func(*handle, error)) {
	l.calls++
	if l.fail != nil {
		complete(nil, l.fail)
		return
	}
	l.created++
	complete(&handle{id: l.created}, nil)
}

func acquire(t *testing.T, c *Cache[*handle], key Key, l *counting) *handle {
	t.Helper()
	h, err := c.AcquireNow(key, func() (*handle, error) {
		var (
			out *handle
			err error
		)
		l.load(func(h *handle, e error) { out, err = h, e })
		return out, err
	})
	require.NoError(t, err)
	return h
}

func TestAcquireSharesHandle(t *testing.T) {
	c := New[*handle]("mesh")
	l := &counting{}
	key := PathKey("res/models/sedan.obj")

	first := acquire(t, c, key, l)
	for i := 0; i < 4; i++ {
		assert.Same(t, first, acquire(t, c, key, l))
	}

	assert.Equal(t, 1, l.calls, "loader must run once")
	assert.Equal(t, 5, c.Refs(key))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 4, c.Stats().Hits)
}

func TestReleaseFreesExactlyOnce(t *testing.T) {
	c := New[*handle]("mesh")
	l := &counting{}
	key := PathKey("a.obj")

	const n = 3
	for i := 0; i < n; i++ {
		acquire(t, c, key, l)
	}

	for i := 0; i < n; i++ {
		h, last, err := c.Release(key)
		require.NoError(t, err)
		require.NotNil(t, h)
		if last {
			l.freed++
		}
		assert.Equal(t, i == n-1, last)
	}

	assert.Equal(t, 1, l.created)
	assert.Equal(t, 1, l.freed)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Refs(key))

	// Entry is gone, so the next acquire loads again.
	acquire(t, c, key, l)
	assert.Equal(t, 2, l.calls)
}

func TestReleaseUnknownKey(t *testing.T) {
	c := New[*handle]("texture")
	_, last, err := c.Release(PathKey("missing.png"))
	assert.False(t, last)
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestInFlightLoadsAreJoined(t *testing.T) {
	c := New[*handle]("mesh")
	key := ContentKey([]byte("v 0 0 0"))

	calls := 0
	var pending func(*handle, error)
	loader := func(complete func(*handle, error)) {
		calls++
		pending = complete
	}

	var got []*handle
	done := func(h *handle, err error) {
		require.NoError(t, err)
		got = append(got, h)
	}

	c.Acquire(key, loader, done)
	c.Acquire(key, loader, done)
	assert.True(t, c.Loading(key))
	assert.Equal(t, 1, calls, "second acquire must not start a second load")
	assert.Empty(t, got)
	assert.Equal(t, 0, c.Len())

	h := &handle{id: 7}
	pending(h, nil)

	assert.False(t, c.Loading(key))
	assert.Equal(t, []*handle{h, h}, got)
	assert.Equal(t, 2, c.Refs(key))
	assert.Equal(t, 1, c.Stats().Joins)
}

func TestLoadFailureLeavesCacheUntouched(t *testing.T) {
	c := New[*handle]("texture")
	key := PathKey("broken.png")
	cause := errors.New("unexpected EOF")

	var pending func(*handle, error)
	loader := func(complete func(*handle, error)) { pending = complete }

	var errs []error
	done := func(h *handle, err error) {
		assert.Nil(t, h)
		errs = append(errs, err)
	}
	c.Acquire(key, loader, done)
	c.Acquire(key, loader, done)
	pending(nil, cause)

	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrLoadFailure)
		assert.ErrorIs(t, err, cause)
		var lerr *LoadError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, "texture", lerr.Kind)
		assert.Equal(t, key, lerr.Key)
	}
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Loading(key))
	assert.Equal(t, 1, c.Stats().Failures)

	// A later acquire retries.
	l := &counting{}
	acquire(t, c, key, l)
	assert.Equal(t, 1, l.calls)
}

func TestCompleteTwiceIgnored(t *testing.T) {
	c := New[*handle]("mesh")
	key := PathKey("a.obj")

	calls := 0
	c.Acquire(key, func(complete func(*handle, error)) {
		complete(&handle{id: 1}, nil)
		complete(&handle{id: 2}, nil)
	}, func(h *handle, err error) {
		calls++
		assert.Equal(t, 1, h.id)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Refs(key))
}

func TestWaiterMayReleaseDuringCompletion(t *testing.T) {
	c := New[*handle]("mesh")
	key := PathKey("orphan.obj")

	var freed []*handle
	c.Acquire(key, func(complete func(*handle, error)) {
		complete(&handle{id: 1}, nil)
	}, func(h *handle, err error) {
		// The requester is gone; hand the reference straight back.
		released, last, err := c.Release(key)
		require.NoError(t, err)
		if last {
			freed = append(freed, released)
		}
	})

	assert.Len(t, freed, 1)
	assert.Equal(t, 0, c.Len())
}

func TestKeysSorted(t *testing.T) {
	c := New[*handle]("mesh")
	l := &counting{}
	acquire(t, c, PathKey("b.obj"), l)
	acquire(t, c, PathKey("a.obj"), l)

	assert.Equal(t, []Key{PathKey("a.obj"), PathKey("b.obj")}, c.Keys())
}
