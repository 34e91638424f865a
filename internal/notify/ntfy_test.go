package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNtfySenderPostsToTopic(t *testing.T) {
	var gotPath, gotTitle, gotPriority, gotTags, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL, "garage-door", time.Second)
	err := s.Send(context.Background(), Notification{
		Title:    "Garage door opened",
		Body:     "fully open at 15:04",
		Priority: PriorityUrgent,
		Tags:     []string{"rotating_light", "warning"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/garage-door", gotPath)
	assert.Equal(t, "Garage door opened", gotTitle)
	assert.Equal(t, "urgent", gotPriority)
	assert.Equal(t, "rotating_light,warning", gotTags)
	assert.Equal(t, "fully open at 15:04", gotBody)
}

func TestNtfySenderOmitsEmptyHeaders(t *testing.T) {
	var hasPriority, hasTags bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasPriority = r.Header["Priority"]
		_, hasTags = r.Header["Tags"]
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL, "t", time.Second)
	require.NoError(t, s.Send(context.Background(), Notification{Title: "x", Body: "y"}))
	assert.False(t, hasPriority)
	assert.False(t, hasTags)
}

func TestNtfySenderNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL, "t", time.Second)
	err := s.Send(context.Background(), Notification{Title: "x", Body: "y"})
	assert.Error(t, err)
}

func TestNtfySenderTransportErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	s := NewNtfySender(srv.URL, "t", time.Second)
	err := s.Send(context.Background(), Notification{Title: "x", Body: "y"})
	assert.Error(t, err)
}

func TestNtfySenderTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL+"/", "topic", time.Second)
	require.NoError(t, s.Send(context.Background(), Notification{Title: "x", Body: "y"}))
	assert.Equal(t, "/topic", gotPath)
}
