package slotclock

import "testing"

func TestCounter_AdvanceWrapsAtFrameBoundary(t *testing.T) {
	c, err := NewCounter(10)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}

	for i := 1; i <= 9; i++ {
		if got := c.Advance(); got != i {
			t.Fatalf("advance %d: slot %d, want %d", i, got, i)
		}
	}
	if got := c.Advance(); got != 0 {
		t.Errorf("slot after frame boundary = %d, want 0", got)
	}
}

func TestCounter_RejectsNonPositiveFrameLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewCounter(n); err == nil {
			t.Errorf("NewCounter(%d) succeeded, want error", n)
		}
	}
}

func TestCounter_Listeners(t *testing.T) {
	c, err := NewCounter(5)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}

	var seen []int
	c.RegisterListener(func(slot int) { seen = append(seen, slot) })

	c.Advance()
	c.Advance()

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("listener saw %v, want [1 2]", seen)
	}
}

func TestOffset(t *testing.T) {
	cases := []struct {
		target, current, perFrame, want int
	}{
		{target: 5, current: 5, perFrame: 20, want: 0},
		{target: 7, current: 5, perFrame: 20, want: 2},
		{target: 4, current: 5, perFrame: 20, want: 19},
		{target: 0, current: 19, perFrame: 20, want: 1},
	}
	for _, tc := range cases {
		if got := Offset(tc.target, tc.current, tc.perFrame); got != tc.want {
			t.Errorf("Offset(%d, %d, %d) = %d, want %d", tc.target, tc.current, tc.perFrame, got, tc.want)
		}
	}
}
