package core

import (
	"errors"
	"testing"
)

func TestPickPin_Bounds(t *testing.T) {
	pin, err := pickPin(nil)
	if err != nil {
		t.Fatalf("pickPin on empty set: %v", err)
	}
	if pin < 1000 || pin > 9999 {
		t.Fatalf("pin %d out of range", pin)
	}
}

func TestPickPin_LastFreePin(t *testing.T) {
	taken := make([]int, 0, pinSpace-1)
	for p := pinMin; p < pinMin+pinSpace; p++ {
		if p != 4242 {
			taken = append(taken, p)
		}
	}

	pin, err := pickPin(taken)
	if err != nil {
		t.Fatalf("pickPin with one free pin: %v", err)
	}
	if pin != 4242 {
		t.Fatalf("pickPin = %d, want 4242", pin)
	}
}

func TestPickPin_Exhausted(t *testing.T) {
	taken := make([]int, 0, pinSpace)
	for p := pinMin; p < pinMin+pinSpace; p++ {
		taken = append(taken, p)
	}

	if _, err := pickPin(taken); err == nil {
		t.Fatalf("expected error when every pin is taken")
	}
}

func TestIsPinCollision(t *testing.T) {
	if !isPinCollision(errors.New("database: constraint failed: UNIQUE constraint failed: profiles.nick, profiles.pin")) {
		t.Fatalf("pin constraint message not recognized")
	}
	if isPinCollision(errors.New("database: constraint failed: UNIQUE constraint failed: profiles.name")) {
		t.Fatalf("name constraint misread as pin collision")
	}
	if isPinCollision(nil) {
		t.Fatalf("nil error misread as pin collision")
	}
}
