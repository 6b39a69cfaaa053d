package conduit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "herald/internal/platform/errors"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL, Token: "api-test", MaxRetries: 2, RetryBase: time.Millisecond})
	c.sleep = func(time.Duration) {}
	return c
}

func TestFeedQueryDecodesStories(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("api.token"); got != "api-test" {
			t.Fatalf("token = %q", got)
		}
		if got := r.FormValue("before"); got != "6000" {
			t.Fatalf("before = %q", got)
		}
		w.Write([]byte(`{"result":{"PHID-STRY-1":{"class":"PhabricatorApplicationTransactionFeedStory","epoch":1700000000,"authorPHID":"PHID-USER-1","chronologicalKey":"5999","text":"alice created D42: Fix thing.","data":{"objectPHID":"PHID-DREV-1"}}},"error_code":null,"error_info":null}`))
	})

	stories, err := c.FeedQuery(context.Background(), FeedQueryArgs{Before: 6000, Limit: 5})
	if err != nil {
		t.Fatalf("FeedQuery: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("stories = %d, want 1", len(stories))
	}
	st := stories[0]
	if st.PHID != "PHID-STRY-1" {
		t.Errorf("story phid = %q", st.PHID)
	}
	key, err := st.Key()
	if err != nil || key != 5999 {
		t.Errorf("key = %d err = %v", key, err)
	}
	if st.Data.ObjectPHID != "PHID-DREV-1" {
		t.Errorf("object phid = %q", st.Data.ObjectPHID)
	}
}

func TestFeedQueryEmptyArrayResult(t *testing.T) {
	// Conduit serializes an empty map result as [] rather than {}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[],"error_code":null,"error_info":null}`))
	})

	stories, err := c.FeedQuery(context.Background(), FeedQueryArgs{Limit: 5})
	if err != nil {
		t.Fatalf("FeedQuery: %v", err)
	}
	if len(stories) != 0 {
		t.Fatalf("stories = %d, want 0", len(stories))
	}
}

func TestAPIErrorIsTransport(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null,"error_code":"ERR-INVALID-AUTH","error_info":"API token missing"}`))
	})

	_, err := c.PHIDQuery(context.Background(), []string{"PHID-DREV-1"})
	if !perr.IsCode(err, perr.ErrorCodeTransport) {
		t.Fatalf("err = %v, want transport code", err)
	}
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"result":{"PHID-DREV-1":{"phid":"PHID-DREV-1","type":"DREV","name":"D42","fullName":"D42: Fix thing","uri":"https://phab/D42","status":"open"}},"error_code":null,"error_info":null}`))
	})

	got, err := c.PHIDQuery(context.Background(), []string{"PHID-DREV-1"})
	if err != nil {
		t.Fatalf("PHIDQuery: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	if got["PHID-DREV-1"].Title() != "Fix thing" {
		t.Errorf("title = %q", got["PHID-DREV-1"].Title())
	}
}

func TestRateLimitedExhaustsRetries(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.PHIDQuery(context.Background(), []string{"PHID-DREV-1"})
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("err = %v, want rate limit code", err)
	}
	if !perr.Retryable(err) {
		t.Fatalf("rate limit errors should be retryable")
	}
}

func TestEmptyBatchSkipsNetwork(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request for empty batch")
	})

	got, err := c.PHIDQuery(context.Background(), nil)
	if err != nil {
		t.Fatalf("PHIDQuery: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got = %v, want empty", got)
	}
}
