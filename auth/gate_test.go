package auth

import (
	"errors"
	"testing"
)

func TestGateAuthorize(t *testing.T) {
	g := NewGate([]string{"alice", " bob ", ""})
	tests := []struct {
		user string
		ok   bool
	}{
		{"alice", true},
		{"bob", true},
		{"Alice", false},
		{"mallory", false},
		{"", false},
	}
	for _, tt := range tests {
		err := g.Authorize(tt.user)
		if tt.ok && err != nil {
			t.Errorf("Authorize(%q) = %v, want nil", tt.user, err)
		}
		if !tt.ok && !errors.Is(err, ErrNotAdmin) {
			t.Errorf("Authorize(%q) = %v, want ErrNotAdmin", tt.user, err)
		}
	}
	if got := g.Admins(); len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("Admins() = %v", got)
	}
}

func TestNilGateDeniesEveryone(t *testing.T) {
	var g *Gate
	if !errors.Is(g.Authorize("alice"), ErrNotAdmin) {
		t.Error("nil gate must deny")
	}
}
