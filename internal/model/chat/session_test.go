package chat

import "testing"

func TestEnsureGreetingInsertsOnce(t *testing.T) {
	s := NewSession("s1")

	for i := 0; i < 5; i++ {
		s.EnsureGreeting()
	}

	if s.Len() != 1 {
		t.Fatalf("expected exactly one turn, got %d", s.Len())
	}
	first := s.Transcript[0]
	if first.Role != RoleAssistant || first.Content != Greeting {
		t.Fatalf("unexpected first turn: %+v", first)
	}
	if !s.Flags.GreetingShown {
		t.Fatal("expected greeting flag to be set")
	}
}

func TestEnsureGreetingGoesFirst(t *testing.T) {
	s := NewSession("s1")
	if err := s.Append(NewTurn(RoleUser, "some text")); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	if !s.EnsureGreeting() {
		t.Fatal("expected greeting to be inserted")
	}
	if s.Transcript[0].Content != Greeting {
		t.Fatalf("greeting not at index 0: %+v", s.Transcript)
	}
	if s.Transcript[1].Content != "some text" {
		t.Fatalf("user turn moved: %+v", s.Transcript)
	}
}

func TestEnsureGreetingSkipsExistingGreeting(t *testing.T) {
	s := NewSession("s1")
	if err := s.Append(NewTurn(RoleAssistant, Greeting)); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	if s.EnsureGreeting() {
		t.Fatal("expected no insertion when greeting content already present")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 turn, got %d", s.Len())
	}
	if !s.Flags.GreetingShown {
		t.Fatal("flag must be set even when nothing was inserted")
	}
}

func TestAppendRejectsBlankUserTurn(t *testing.T) {
	s := NewSession("s1")

	if err := s.Append(NewTurn(RoleUser, "   ")); err != ErrEmptyContent {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if err := s.Append(Turn{Role: "system", Content: "x"}); err != ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty transcript, got %d", s.Len())
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	s := NewSession("s1")
	contents := []string{"first", "second", "third"}
	for i, c := range contents {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		if err := s.Append(NewTurn(role, c)); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	for i, c := range contents {
		if s.Transcript[i].Content != c {
			t.Fatalf("turn %d: got %q want %q", i, s.Transcript[i].Content, c)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewSession("s1")
	s.EnsureGreeting()

	c := s.Clone()
	if err := s.Append(NewTurn(RoleUser, "later")); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	if c.Len() != 1 {
		t.Fatalf("clone changed with original: %d turns", c.Len())
	}
	c.Transcript[0].Content = "mutated"
	if s.Transcript[0].Content != Greeting {
		t.Fatal("mutating the clone leaked into the session")
	}
}

func TestCloneOfEmptySessionHasNonNilTranscript(t *testing.T) {
	c := NewSession("s1").Clone()
	if c.Transcript == nil {
		t.Fatal("expected empty, non-nil transcript")
	}
}
