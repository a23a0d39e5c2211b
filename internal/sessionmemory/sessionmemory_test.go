package sessionmemory

import (
	"testing"

	"github.com/X-Luffy/Law-Agent/pkg/models"
)

func TestStore_AddRespectsCapacity(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.Add("sess-1", models.RoleUser, "msg", nil)
	}
	if got := s.Len("sess-1"); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestStore_AddEvictsOldestFirst(t *testing.T) {
	s := New(2)
	s.Add("sess-1", models.RoleUser, "first", nil)
	s.Add("sess-1", models.RoleAssistant, "second", nil)
	s.Add("sess-1", models.RoleUser, "third", nil)

	all := s.All("sess-1")
	if len(all) != 2 {
		t.Fatalf("All() len = %d, want 2", len(all))
	}
	if all[0].Content != "second" || all[1].Content != "third" {
		t.Errorf("All() = %+v, want [second, third]", all)
	}
}

func TestStore_RecentReturnsLastN(t *testing.T) {
	s := New(DefaultCapacity)
	for i := 0; i < 5; i++ {
		s.Add("sess-1", models.RoleUser, "m", nil)
	}
	if got := len(s.Recent("sess-1", 2)); got != 2 {
		t.Errorf("Recent(2) len = %d, want 2", got)
	}
	if got := len(s.Recent("sess-1", 0)); got != 5 {
		t.Errorf("Recent(0) len = %d, want 5 (full window)", got)
	}
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	s := New(DefaultCapacity)
	s.Add("sess-1", models.RoleUser, "a", nil)
	s.Add("sess-2", models.RoleUser, "b", nil)

	if s.Len("sess-1") != 1 || s.Len("sess-2") != 1 {
		t.Errorf("expected independent sessions, got sess-1=%d sess-2=%d", s.Len("sess-1"), s.Len("sess-2"))
	}
}

func TestStore_EmptySessionReturnsEmpty(t *testing.T) {
	s := New(DefaultCapacity)
	if got := s.All("unknown"); len(got) != 0 {
		t.Errorf("All(unknown) = %+v, want empty", got)
	}
}

func TestStore_ResetClears(t *testing.T) {
	s := New(DefaultCapacity)
	s.Add("sess-1", models.RoleUser, "a", nil)
	s.Reset("sess-1")
	if got := s.Len("sess-1"); got != 0 {
		t.Errorf("Len() after Reset = %d, want 0", got)
	}
}
