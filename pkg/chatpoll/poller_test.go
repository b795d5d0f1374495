package chatpoll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(min int) *time.Time {
	t := time.Date(2024, 1, 1, 12, min, 0, 0, time.UTC)
	return &t
}

func TestMerge(t *testing.T) {
	p := New(nil, time.Second)

	assert.True(t, p.Merge([]Message{{ID: "1", Content: "hi"}, {ID: "2", Content: "there"}}))
	assert.False(t, p.Merge([]Message{{ID: "1", Content: "hi"}, {ID: "2", Content: "there"}}), "identical poll is not a change")

	assert.True(t, p.Merge([]Message{{ID: "1", Content: "hi"}, {ID: "2", Content: "there!", EditedAt: at(1)}}))
	assert.True(t, p.Merge([]Message{{ID: "1", Content: "hi", ReadAt: at(2)}}))
	assert.True(t, p.Merge([]Message{{ID: "3", Content: "new"}}))

	thread := p.Thread()
	require.Len(t, thread, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{thread[0].ID, thread[1].ID, thread[2].ID})
	assert.Equal(t, "there!", thread[1].Content)
	assert.NotNil(t, thread[0].ReadAt)
}

func TestMerge_SameInstantDifferentLocation(t *testing.T) {
	p := New(nil, time.Second)
	utc := at(5)
	local := utc.In(time.FixedZone("X", 3600))

	p.Merge([]Message{{ID: "1", ReadAt: utc}})
	assert.False(t, p.Merge([]Message{{ID: "1", ReadAt: &local}}))
}

func TestRun_EmitsOnlyOnChange(t *testing.T) {
	var (
		mu    sync.Mutex
		polls int
	)
	fetch := FetcherFunc(func(context.Context) ([]Message, error) {
		mu.Lock()
		defer mu.Unlock()
		polls++
		switch polls {
		case 1:
			return []Message{{ID: "1", Content: "a"}}, nil
		case 2:
			return nil, errors.New("flaky network")
		case 3:
			return []Message{{ID: "1", Content: "a"}}, nil
		default:
			return []Message{{ID: "1", Content: "a"}, {ID: "2", Content: "b"}}, nil
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	var emitted [][]Message
	done := make(chan error, 1)
	go func() {
		done <- New(fetch, time.Millisecond).Run(ctx, func(thread []Message) {
			emitted = append(emitted, thread)
			if len(thread) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("poller did not stop")
	}
	require.Len(t, emitted, 2)
	assert.Len(t, emitted[0], 1)
	assert.Len(t, emitted[1], 2)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":401,"message":"unauthorized"}}`))
			return
		}
		assert.Equal(t, "/api/messages/thread/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"1","content":"hi","createdAt":"2024-01-01T00:00:00Z"}]}`))
	}))
	defer srv.Close()

	msgs, err := NewHTTPFetcher(srv.URL+"/", "abc", "tok").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)

	_, err = NewHTTPFetcher(srv.URL, "abc", "bad").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}
