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

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "31/12/2000", "2024-02-29T08:00:00"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "32/01/2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	got, ok := IsValidClock("9:5")
	if !ok || got != "09:05" {
		t.Errorf("IsValidClock(%q) = %q, %v, want 09:05, true", "9:5", got, ok)
	}
	if _, ok := IsValidClock("25:00"); ok {
		t.Errorf("IsValidClock(%q) = true, want false", "25:00")
	}
}

func TestIsNonNegative(t *testing.T) {
	neg, zero := -1.0, 0.0
	if !IsNonNegative(nil) || !IsNonNegative(&zero) {
		t.Errorf("IsNonNegative should accept nil and zero")
	}
	if IsNonNegative(&neg) {
		t.Errorf("IsNonNegative(-1) = true, want false")
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	errs.Add("date", "invalid")
	errs.Add("in_time", "required")
	got := errs.Error()
	want := "date: invalid; in_time: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "invalid"},
		{Field: "in_time", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"date": "invalid", "in_time": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_OrNil(t *testing.T) {
	var errs ValidationErrors
	if errs.OrNil() != nil {
		t.Errorf("OrNil() on empty errors should be nil")
	}
	errs.Add("x", "y")
	if errs.OrNil() == nil {
		t.Errorf("OrNil() should return the collected errors")
	}
}
