package pacing

import (
	"math"
	"testing"
)

func TestGateFiresAtRate(t *testing.T) {
	g := NewGate(60)
	fired := 0
	// One simulated second in 1 ms steps.
	for i := 0; i < 1000; i++ {
		if g.Advance(0.001) {
			fired++
		}
	}
	if fired < 58 || fired > 61 {
		t.Fatalf("fired %d times in one second at 60/s", fired)
	}
}

func TestGateFirstAdvanceFires(t *testing.T) {
	g := NewGate(240)
	if !g.Advance(0) {
		t.Fatal("first advance should fire")
	}
	if g.Advance(0.001) {
		t.Fatal("second advance inside the interval should not fire")
	}
}

func TestGateDropsMissedIntervals(t *testing.T) {
	g := NewGate(10)
	g.Advance(0)
	if !g.Advance(5) {
		t.Fatal("long stall should fire once")
	}
	if g.Advance(0.01) {
		t.Fatal("missed intervals must not be replayed")
	}
}

func TestGateUnlimited(t *testing.T) {
	g := NewGate(0)
	for i := 0; i < 5; i++ {
		if !g.Advance(0) {
			t.Fatal("unlimited gate must always fire")
		}
	}
}

func TestGatesAreIndependent(t *testing.T) {
	update, render := NewGate(60), NewGate(240)
	var u, r int
	for i := 0; i < 2000; i++ {
		if update.Advance(0.0005) {
			u++
		}
		if render.Advance(0.0005) {
			r++
		}
	}
	if u >= r {
		t.Fatalf("update fired %d, render %d; render should be faster", u, r)
	}
}

func TestCounter(t *testing.T) {
	c := NewCounter(1)
	closed := false
	for i := 0; i < 150; i++ {
		if c.Tick(0.01) {
			closed = true
		}
	}
	if !closed {
		t.Fatal("window should have closed after one second")
	}
	if math.Abs(c.Rate()-100) > 1.5 {
		t.Fatalf("rate = %v, want ~100", c.Rate())
	}
}
