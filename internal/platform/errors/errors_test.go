package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestCodeOfAndWrap(t *testing.T) {
	base := Transportf("feed.query failed")
	wrapped := Wrapf(base, ErrorCodeTransport, "cycle aborted")

	if CodeOf(wrapped) != ErrorCodeTransport {
		t.Fatalf("expected transport code, got %d", CodeOf(wrapped))
	}
	if !stderrs.Is(wrapped, wrapped) {
		t.Fatalf("errors.Is identity failed")
	}
	if Root(wrapped).Error() != "feed.query failed" {
		t.Fatalf("unexpected root: %v", Root(wrapped))
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Transportf("boom")) {
		t.Fatalf("transport errors should be retryable")
	}
	if !Retryable(Newf(ErrorCodeTooManyRequests, "slow down")) {
		t.Fatalf("rate limit errors should be retryable")
	}
	if Retryable(Unclassifiablef("weird narrative")) {
		t.Fatalf("grammar errors are not retryable")
	}
	if Retryable(CorruptCursorf("bad file")) {
		t.Fatalf("corrupt cursor is not retryable")
	}
}

func TestHTTPMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFoundf("no paste"), http.StatusNotFound},
		{UnresolvedReff("missing actor"), http.StatusNotFound},
		{Newf(ErrorCodeValidation, "text required"), http.StatusBadRequest},
		{Transportf("down"), http.StatusBadGateway},
		{Internalf("wat"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWithOpCopyOnWrite(t *testing.T) {
	orig := Transportf("down")
	tagged := WithOp(orig, "feed.sync")

	e, ok := As(tagged)
	if !ok || e.Op() != "feed.sync" {
		t.Fatalf("expected op tag on copy")
	}
	o, _ := As(orig)
	if o.Op() != "" {
		t.Fatalf("original must stay untouched")
	}
}
