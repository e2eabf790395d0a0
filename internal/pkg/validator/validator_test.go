package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b",   // too short
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2026-03-07"); !ok {
		t.Error("IsValidDate(\"2026-03-07\") = false, want true")
	}
	invalid := []string{"2026-13-01", "07-03-2026", "2026-03-07T10:00:00Z", ""}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{
		"2026-03-07T10:30:00Z",
		"2026-03-07T10:30:00+01:00",
		"2026-03-07T10:30:00.123456789Z",
	}
	invalid := []string{"2026-03-07", "2026-03-07 10:30:00", ""}
	for _, d := range valid {
		if _, ok := IsValidDateTime(d); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDateTime(d); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", d)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "08:30", "23:59"}
	invalid := []string{"24:00", "8:30", "12:60", "12:5", "noon", ""}
	for _, c := range valid {
		if !IsValidClock(c) {
			t.Errorf("IsValidClock(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if IsValidClock(c) {
			t.Errorf("IsValidClock(%q) = true, want false", c)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"IN", "OUT"}
	if !IsInSlice("IN", slice) {
		t.Error("IsInSlice(\"IN\") = false, want true")
	}
	if IsInSlice("in", slice) {
		t.Error("IsInSlice(\"in\") = true, want false")
	}
	if IsInSlice("IN", nil) {
		t.Error("IsInSlice on nil slice = true, want false")
	}
}

func TestValidationErrorsToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "direction", Message: "direction must be IN or OUT"},
		{Field: "timestamp", Message: "timestamp is required"},
	}
	m := errs.ToMap()
	if len(m) != 2 {
		t.Fatalf("ToMap() has %d entries, want 2", len(m))
	}
	if m["direction"] != "direction must be IN or OUT" {
		t.Errorf("ToMap()[direction] = %q", m["direction"])
	}
}
