package service

import (
	"os"
	"path/filepath"
	"testing"

	"herald/internal/services/feed/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronokey")
	s := NewCursorStore(path)

	want := domain.Cursor{Key: 6376652178983363584}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok := s.Load()
	if !ok {
		t.Fatal("Load: no cursor after save")
	}
	if got.Key != want.Key {
		t.Fatalf("Load = %d, want %d", got.Key, want.Key)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cursor file: %v", err)
	}
	if string(raw) != "6376652178983363584\n" {
		t.Fatalf("cursor file = %q", raw)
	}
}

func TestCursorMissingFile(t *testing.T) {
	s := NewCursorStore(filepath.Join(t.TempDir(), "absent"))
	if _, ok := s.Load(); ok {
		t.Fatal("Load reported a cursor for a missing file")
	}
}

func TestCursorCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronokey")
	if err := os.WriteFile(path, []byte("not-a-number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewCursorStore(path)
	if _, ok := s.Load(); ok {
		t.Fatal("Load reported a cursor for corrupt content")
	}
}

func TestCursorSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronokey")
	s := NewCursorStore(path)
	if err := s.Save(domain.Cursor{Key: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(domain.Cursor{Key: 20}); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Load()
	if !ok || got.Key != 20 {
		t.Fatalf("Load = %v ok=%v, want key 20", got, ok)
	}
}

func TestDirectionAdvance(t *testing.T) {
	cases := []struct {
		dir    domain.Direction
		cur, k domain.Chronokey
		want   domain.Chronokey
	}{
		{domain.Forward, 5, 9, 9},
		{domain.Forward, 9, 5, 9},
		{domain.Backward, 5, 9, 5},
		{domain.Backward, 9, 5, 5},
		{domain.Forward, 7, 7, 7},
		{domain.Backward, 7, 7, 7},
	}
	for _, c := range cases {
		if got := c.dir.Advance(c.cur, c.k); got != c.want {
			t.Errorf("%s Advance(%d, %d) = %d, want %d", c.dir, c.cur, c.k, got, c.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := domain.ParseDirection("sideways"); err == nil {
		t.Fatal("ParseDirection accepted junk")
	}
	d, err := domain.ParseDirection("backward")
	if err != nil || d != domain.Backward {
		t.Fatalf("ParseDirection = %v, %v", d, err)
	}
}
