package render

import (
	"strings"
	"testing"
)

func TestObscureStripRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "ab", "alice", "żółw", "a b c"} {
		if got := Strip(Obscure(s)); got != s {
			t.Errorf("Strip(Obscure(%q)) = %q", s, got)
		}
	}
}

func TestObscureBreaksLiteralMatch(t *testing.T) {
	got := Obscure("alice")
	if got == "alice" {
		t.Fatal("obscured name unchanged")
	}
	if strings.Contains(got, "alice") {
		t.Fatalf("obscured name still contains the literal: %q", got)
	}
	if Strip(got) != "alice" {
		t.Fatalf("strip lost characters: %q", Strip(got))
	}
}

func TestObscureShortInputsUnchanged(t *testing.T) {
	if Obscure("") != "" {
		t.Error("empty string changed")
	}
	if Obscure("x") != "x" {
		t.Error("single rune changed")
	}
}

func TestBold(t *testing.T) {
	r := Renderer{Bolding: true}
	if got := r.Bold("D42"); got != "\x02D42\x02" {
		t.Errorf("Bold = %q", got)
	}
	if got := (Renderer{}).Bold("D42"); got != "D42" {
		t.Errorf("Bold disabled = %q", got)
	}
}

func TestLinkStyles(t *testing.T) {
	u := "https://phab.example.org/D42"
	if got := (Renderer{}).Link(u); got != "<"+u+">" {
		t.Errorf("plain link = %q", got)
	}
	want := `<a href="` + u + `">` + u + `</a>`
	if got := (Renderer{HTMLLinks: true}).Link(u); got != want {
		t.Errorf("html link = %q", got)
	}
	if got := (Renderer{}).Link(""); got != "" {
		t.Errorf("empty link = %q", got)
	}
}

func TestNameHonorsPolicy(t *testing.T) {
	if got := (Renderer{ObscureNames: true}).Name("bob"); Strip(got) != "bob" || got == "bob" {
		t.Errorf("obscured name = %q", got)
	}
	if got := (Renderer{}).Name("bob"); got != "bob" {
		t.Errorf("plain name = %q", got)
	}
}
