package core

import (
	"errors"
	"testing"
)

func TestLocationEquality(t *testing.T) {
	a := L(3, 4)
	b := L(3, 4)
	if a != b {
		t.Errorf("L(3, 4) != L(3, 4)")
	}
	if Intern(3, 4) != Intern(3, 4) {
		t.Error("Intern should return the same pointer for equal coordinates")
	}
	if Intern(3, 4) == Intern(4, 3) {
		t.Error("Intern should return different pointers for different coordinates")
	}
	if *Intern(7, 1) != L(7, 1) {
		t.Errorf("Intern(7, 1) = %v, expected (7,1)", *Intern(7, 1))
	}
}

func TestLocationStep(t *testing.T) {
	tests := []struct {
		dir      Direction
		expected Location
	}{
		{DirUp, L(5, 4)},
		{DirRight, L(6, 5)},
		{DirDown, L(5, 6)},
		{DirLeft, L(4, 5)},
		{DirNone, L(5, 5)},
	}

	for _, tc := range tests {
		t.Run(tc.dir.String(), func(t *testing.T) {
			if got := L(5, 5).Step(tc.dir); got != tc.expected {
				t.Errorf("Step(%v) = %v, expected %v", tc.dir, got, tc.expected)
			}
		})
	}
}

func TestLocationManhattan(t *testing.T) {
	if d := L(0, 0).Manhattan(L(3, -4)); d != 7 {
		t.Errorf("Manhattan() = %d, expected 7", d)
	}
	if got := L(2, 3).Scale(16); got != L(32, 48) {
		t.Errorf("Scale(16) = %v, expected (32,48)", got)
	}
}

func TestDirectionOppositeAndParse(t *testing.T) {
	for _, d := range Cardinals {
		if d.Opposite().Opposite() != d {
			t.Errorf("%v.Opposite().Opposite() != %v", d, d)
		}
		parsed, err := ParseDirection(d.String())
		if err != nil || parsed != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), parsed, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection(sideways) should fail")
	}
}

func TestOrientedGridMobile(t *testing.T) {
	var m OrientedGridMobile
	m.MoveTo(16, 16)
	m.Step(DirLeft, 4)

	if m.Location() != L(12, 16) {
		t.Errorf("Location() = %v, expected (12,16)", m.Location())
	}
	if m.Orientation != DirLeft {
		t.Errorf("Orientation = %v, expected left", m.Orientation)
	}

	m.Step(DirNone, 4)
	if m.Orientation != DirLeft || m.Location() != L(12, 16) {
		t.Error("Step(DirNone) should not move or turn")
	}
}

func TestActionStoreIdempotence(t *testing.T) {
	s := NewActionStore()
	s.AddAction("x")
	s.AddAction("x")
	if s.Len() != 1 {
		t.Errorf("Len() = %d after double add, expected 1", s.Len())
	}

	s.ForgetAction("x")
	if s.Has("x") {
		t.Error("one ForgetAction should remove a twice-added action")
	}

	s.ForgetAction("x") // absent: no-op
	if s.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", s.Len())
	}
}

func TestActionStoreLiveSet(t *testing.T) {
	s := NewActionStore()
	s.AddAction(ActionUp)
	s.AddAction(ActionFire)

	live := s.CurrentActions()
	live.Remove(ActionFire)
	if s.Has(ActionFire) {
		t.Error("removing from CurrentActions() should affect the store")
	}

	s.AddAction(ActionLeft)
	s.ForgetAll()
	if s.Len() != 0 || live.Size() != 0 {
		t.Errorf("ForgetAll() left %d actions", s.Len())
	}
}

func TestErrorWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, "session.Update", "cannot build level %q", "l2")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	expected := `session.Update: cannot build level "l2": boom`
	if err.Error() != expected {
		t.Errorf("Error() = %q, expected %q", err.Error(), expected)
	}

	var target *Error
	if !errors.As(error(Errorf("fsm", "x")), &target) || target.Op != "fsm" {
		t.Error("errors.As should extract *Error")
	}
}
