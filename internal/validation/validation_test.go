package validation

import "testing"

func TestProductiveHours_Valid(t *testing.T) {
	cases := []string{"", "0", "6", "20", "2.45", "2.5", "0.59", "19.59", "20.0", "20.00", "6.05"}
	for _, raw := range cases {
		if err := ProductiveHours(raw); err != nil {
			t.Errorf("ProductiveHours(%q) unexpected error: %v", raw, err)
		}
	}
}

func TestProductiveHours_Invalid(t *testing.T) {
	cases := []string{
		"2.75",  // fraction is minutes, 75 is out of range
		"2.60",  // minutes cap at 59
		"21",    // above the hour cap
		"20.01", // cap is exactly 20 hours
		"-1",    // negative
		"2.",    // empty minutes part
		"2.455", // three-digit minutes
		"abc",
		"2,45", // wrong separator
	}
	for _, raw := range cases {
		if err := ProductiveHours(raw); err == nil {
			t.Errorf("ProductiveHours(%q) expected error", raw)
		}
	}
}

func TestHabitName(t *testing.T) {
	if err := HabitName("Morning run"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := HabitName("   "); err == nil {
		t.Error("expected error for whitespace-only name")
	}
	long := make([]byte, MaxHabitNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := HabitName(string(long)); err == nil {
		t.Error("expected error for overlong name")
	}
}

func TestUsername(t *testing.T) {
	valid := []string{"alice", "@alice", "Alice", "a_b_c", "user123", "abc", "aaaaaaaaaaaaaaaaaaaa"}
	for _, u := range valid {
		if err := Username(u); err != nil {
			t.Errorf("Username(%q) unexpected error: %v", u, err)
		}
	}
	invalid := []string{"", "ab", "aaaaaaaaaaaaaaaaaaaaa", "has space", "dash-ed", "dot.ted", "@@alice"}
	for _, u := range invalid {
		if err := Username(u); err == nil {
			t.Errorf("Username(%q) expected error", u)
		}
	}
}
