package repositories

import (
	"errors"
	"testing"
)

func TestUpdateBuilderSetAndBuild(t *testing.T) {
	b := newUpdateBuilder("materials", "name", "section_id")
	b.Set("name", "bolt").Set("section_id", int64(2))

	query, args, err := b.Build(int64(7), "id, name")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "UPDATE materials SET name = $1, section_id = $2, updated_at = NOW() WHERE id = $3 RETURNING id, name"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 3 || args[0] != "bolt" || args[1] != int64(2) || args[2] != int64(7) {
		t.Errorf("args = %v", args)
	}
}

func TestUpdateBuilderIgnoresUnknownColumns(t *testing.T) {
	b := newUpdateBuilder("users", "login")
	b.Set("login", "worker1").Set("role", "admin").Set("id", int64(1))

	query, args, err := b.Build(int64(4), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "UPDATE users SET login = $1, updated_at = NOW() WHERE id = $2"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want 2 entries", args)
	}
}

func TestUpdateBuilderEmpty(t *testing.T) {
	b := newUpdateBuilder("sections", "name")
	b.Set("parent_id", int64(1))

	if !b.Empty() {
		t.Error("builder with only rejected columns should be empty")
	}
	if _, _, err := b.Build(int64(1), "id"); !errors.Is(err, ErrNoUpdatableFields) {
		t.Errorf("err = %v, want ErrNoUpdatableFields", err)
	}
}

func TestUpdateBuilderSetRaw(t *testing.T) {
	b := newUpdateBuilder("materials", "name")
	b.Set("name", "rivet").SetRaw("quantity = quantity + $%d", int64(5))

	query, args, err := b.Build(int64(3), "quantity")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "UPDATE materials SET name = $1, quantity = quantity + $2, updated_at = NOW() WHERE id = $3 RETURNING quantity"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 3 {
		t.Errorf("args = %v, want 3 entries", args)
	}
}
