package id

import (
	"strings"
	"testing"
)

func TestRandomGenerator_NewID(t *testing.T) {
	g := NewRandomGenerator("pick_")
	a, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	b, _ := g.NewID()
	if !strings.HasPrefix(a, "pick_") || len(a) != len("pick_")+32 {
		t.Fatalf("unexpected id format: %s", a)
	}
	if a == b {
		t.Fatalf("expected distinct ids")
	}
}

func TestSequenceGenerator_NewID(t *testing.T) {
	g := NewSequenceGenerator("p")
	first, _ := g.NewID()
	second, _ := g.NewID()
	if first != "p1" || second != "p2" {
		t.Fatalf("unexpected sequence: %s %s", first, second)
	}
}
