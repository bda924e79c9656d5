package cache

import (
	"testing"
	"time"
)

func TestNewResetJobRejectsBadTime(t *testing.T) {
	if _, err := NewResetJob(nil, "25:99", nil); err == nil {
		t.Error("NewResetJob expected error for invalid time, got nil")
	}
	if _, err := NewResetJob(nil, "14:11", nil); err != nil {
		t.Errorf("NewResetJob(14:11) unexpected error: %v", err)
	}
}

func TestNextReset(t *testing.T) {
	j, err := NewResetJob(nil, "14:11", nil)
	if err != nil {
		t.Fatalf("NewResetJob failed: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before today's reset",
			now:  time.Date(2025, 3, 21, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 21, 14, 11, 0, 0, time.UTC),
		},
		{
			name: "after today's reset",
			now:  time.Date(2025, 3, 21, 15, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 22, 14, 11, 0, 0, time.UTC),
		},
		{
			name: "exactly at reset time rolls to tomorrow",
			now:  time.Date(2025, 3, 21, 14, 11, 0, 0, time.UTC),
			want: time.Date(2025, 3, 22, 14, 11, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			now:  time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC),
			want: time.Date(2025, 4, 1, 14, 11, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := j.nextReset(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("nextReset(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
