package config

import (
	"testing"
	"time"

	"herald/internal/platform/testkit"
)

func TestPrefixComposes(t *testing.T) {
	t.Setenv("HERALD_FEED_STORY_LIMIT", "25")
	c := New().Prefix("HERALD_").Prefix("FEED_")
	if got := c.MayInt("STORY_LIMIT", 15); got != 25 {
		t.Fatalf("MayInt = %d", got)
	}
}

func TestMustStringPanicsWhenMissing(t *testing.T) {
	c := New().Prefix("HERALD_TEST_")
	testkit.MustPanic(t, func() { c.MustString("ABSENT") })
}

func TestMayCSVTrimsAndDrops(t *testing.T) {
	t.Setenv("HERALD_TEST_ACTORS", " alice, bob ,,carol ")
	c := New().Prefix("HERALD_TEST_")
	got := c.MayCSV("ACTORS", nil)
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV = %v, want %v", got, want)
		}
	}
}

func TestMayInt64FallsBackOnJunk(t *testing.T) {
	t.Setenv("HERALD_TEST_EPOCH", "not-an-epoch")
	c := New().Prefix("HERALD_TEST_")
	if got := c.MayInt64("EPOCH", 42); got != 42 {
		t.Fatalf("MayInt64 = %d", got)
	}
	t.Setenv("HERALD_TEST_EPOCH", "1700000000")
	if got := c.MayInt64("EPOCH", 42); got != 1700000000 {
		t.Fatalf("MayInt64 = %d", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("HERALD_TEST_")
	if got := c.MayEnum("DIRECTION", "forward", "forward", "backward"); got != "forward" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("HERALD_TEST_DIRECTION", "Backward")
	testkit.MustNotPanic(t, func() { c.MayEnum("DIRECTION", "forward", "forward", "backward") })
	t.Setenv("HERALD_TEST_DIRECTION", "sideways")
	testkit.MustPanic(t, func() { c.MayEnum("DIRECTION", "forward", "forward", "backward") })
}

func TestMayDuration(t *testing.T) {
	t.Setenv("HERALD_TEST_INTERVAL", "90s")
	c := New().Prefix("HERALD_TEST_")
	if got := c.MayDuration("INTERVAL", time.Minute); got != 90*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
}
