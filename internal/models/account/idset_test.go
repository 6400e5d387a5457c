package models

import (
	"reflect"
	"testing"
)

func TestAddIDIsIdempotent(t *testing.T) {
	ids := []string{"u1"}
	ids = AddID(ids, "u2")
	ids = AddID(ids, "u2")
	ids = AddID(ids, "u2")
	if want := []string{"u1", "u2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("AddID = %v, want %v", ids, want)
	}
}

func TestAddIDDoesNotAliasInput(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "a"
	x := AddID(base, "b")
	y := AddID(base, "c")
	if x[1] != "b" || y[1] != "c" {
		t.Errorf("AddID results alias each other: %v %v", x, y)
	}
}

func TestRemoveID(t *testing.T) {
	got := RemoveID([]string{"a", "b", "a", "c"}, "a")
	if want := []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveID = %v, want %v", got, want)
	}
	if got := RemoveID(nil, "a"); len(got) != 0 {
		t.Errorf("RemoveID(nil) = %v", got)
	}
}

func TestEntryHelpers(t *testing.T) {
	e := Entry{Likes: []string{"u2"}}
	if !e.LikedBy("u2") || e.LikedBy("u3") {
		t.Error("LikedBy mismatch")
	}
}

func TestProfileIsFollowing(t *testing.T) {
	var p *UserProfile
	if p.IsFollowing("x") {
		t.Error("nil profile follows nobody")
	}
	p = &UserProfile{Following: []string{"x"}}
	if !p.IsFollowing("x") {
		t.Error("expected following x")
	}
}

func TestPublicDropsEmail(t *testing.T) {
	p := UserProfile{UID: "u1", Email: "a@b.c"}
	if p.Public().Email != "" {
		t.Error("Public should clear email")
	}
	if p.Email == "" {
		t.Error("Public must not modify the receiver")
	}
}
