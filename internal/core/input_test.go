package core

import "testing"

func TestActionString(t *testing.T) {
	if ActionLeft.String() != "Left" {
		t.Errorf("ActionLeft.String() = %q", ActionLeft.String())
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("Action(99).String() = %q", Action(99).String())
	}
}
