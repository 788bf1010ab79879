package usecase

import "testing"

func TestIsoTimestamp_Nil(t *testing.T) {
	if got := isoTimestamp(nil); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
}

func TestIsoTimestamp_EpochMillisNumber(t *testing.T) {
	got := isoTimestamp(float64(1700000000000))
	if got == nil || *got != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected result: %v", deref(got))
	}
}

func TestIsoTimestamp_EpochMillisDigitString(t *testing.T) {
	got := isoTimestamp("1700000000000")
	if got == nil || *got != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected result: %v", deref(got))
	}
}

func TestIsoTimestamp_ISOStringWithOffset(t *testing.T) {
	got := isoTimestamp("2024-01-02T03:04:05+02:00")
	if got == nil || *got != "2024-01-02T01:04:05Z" {
		t.Fatalf("unexpected result: %v", deref(got))
	}
}

func TestIsoTimestamp_NaiveStringAssumesUTC(t *testing.T) {
	got := isoTimestamp("2024-01-02T03:04:05")
	if got == nil || *got != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected result: %v", deref(got))
	}
}

func TestIsoTimestamp_UnparseableStringPassesThrough(t *testing.T) {
	got := isoTimestamp("sometime soon")
	if got == nil || *got != "sometime soon" {
		t.Fatalf("unexpected result: %v", deref(got))
	}
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
