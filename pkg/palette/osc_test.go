package palette

import "testing"

func TestParseColours(t *testing.T) {
	response := "ESC]4;1;rgb:c0c0/2222/eaeaBELLESC]4;229;rgb:aaaa/ffff/afafBELL"

	entries, err := parseColours(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := entries[1]
	if !ok || got != (RGB8{R: 192, G: 34, B: 234}) {
		t.Errorf("expected index 1 to be (192,34,234), got %+v ok=%v", got, ok)
	}

	got, ok = entries[229]
	if !ok || got != (RGB8{R: 170, G: 255, B: 175}) {
		t.Errorf("expected index 229 to be (170,255,175), got %+v ok=%v", got, ok)
	}
}

func TestParseColoursIgnoresMalformedSequences(t *testing.T) {
	entries, err := parseColours("ESC]4;not-a-number;rgb:ffff/ffff/ffffBELL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected malformed sequence to be skipped, got %+v", entries)
	}
}

func TestFirstAndLastChars(t *testing.T) {
	if got := lastChars("c0c0", 2); got != "c0" {
		t.Errorf("expected last 2 chars 'c0', got %q", got)
	}
	if got := firstChars("eaea", 2); got != "ea" {
		t.Errorf("expected first 2 chars 'ea', got %q", got)
	}
	if got := lastChars("a", 2); got != "a" {
		t.Errorf("expected short string returned unchanged, got %q", got)
	}
}
