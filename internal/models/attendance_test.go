package models

import "testing"

func TestAttendanceStatusNext(t *testing.T) {
	tests := []struct {
		name     string
		status   AttendanceStatus
		expected AttendanceStatus
	}{
		{
			name:     "unknown advances to present",
			status:   StatusUnknown,
			expected: StatusPresent,
		},
		{
			name:     "present advances to absent",
			status:   StatusPresent,
			expected: StatusAbsent,
		},
		{
			name:     "absent wraps to unknown",
			status:   StatusAbsent,
			expected: StatusUnknown,
		},
		{
			name:     "empty status treated as unknown",
			status:   AttendanceStatus(""),
			expected: StatusPresent,
		},
		{
			name:     "garbage status treated as unknown",
			status:   AttendanceStatus("maybe"),
			expected: StatusPresent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Next(); got != tt.expected {
				t.Errorf("Next() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAttendanceStatusCycleReturnsToStart(t *testing.T) {
	status := StatusUnknown
	for i := 0; i < 3; i++ {
		status = status.Next()
	}
	if status != StatusUnknown {
		t.Errorf("three taps should return to unknown, got %v", status)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    AttendanceStatus
		expected AttendanceStatus
	}{
		{StatusPresent, StatusPresent},
		{StatusAbsent, StatusAbsent},
		{StatusUnknown, StatusUnknown},
		{AttendanceStatus(""), StatusUnknown},
		{AttendanceStatus("PRESENT"), StatusUnknown},
	}

	for _, tt := range tests {
		if got := tt.input.Normalize(); got != tt.expected {
			t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestRecordKey(t *testing.T) {
	got := RecordKey("2025-06-02", "abc-123")
	want := "2025-06-02_abc-123"
	if got != want {
		t.Errorf("RecordKey() = %q, want %q", got, want)
	}
}

func TestWeeklyAttendanceStatusFor(t *testing.T) {
	weekly := WeeklyAttendance{
		"2025-06-02": {
			"m1": {MemberID: "m1", Date: "2025-06-02", Status: StatusPresent},
		},
	}

	if got := weekly.StatusFor("2025-06-02", "m1"); got != StatusPresent {
		t.Errorf("StatusFor existing record = %v, want present", got)
	}
	if got := weekly.StatusFor("2025-06-02", "m2"); got != StatusUnknown {
		t.Errorf("StatusFor missing member = %v, want unknown", got)
	}
	if got := weekly.StatusFor("2025-06-03", "m1"); got != StatusUnknown {
		t.Errorf("StatusFor missing date = %v, want unknown", got)
	}
}
