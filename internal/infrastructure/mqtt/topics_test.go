package mqtt

import (
	"testing"
)

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "Setpoints",
			builder: func() string {
				return Topics{}.Setpoints("gh-01")
			},
			expected: "greenhouse/gh-01/setpoints",
		},
		{
			name: "Telemetry",
			builder: func() string {
				return Topics{}.Telemetry("gh-01")
			},
			expected: "greenhouse/gh-01/telemetry",
		},
		{
			name: "Status",
			builder: func() string {
				return Topics{}.Status("gh-01")
			},
			expected: "greenhouse/gh-01/status",
		},
		{
			name: "AllTelemetry",
			builder: func() string {
				return Topics{}.AllTelemetry()
			},
			expected: "greenhouse/+/telemetry",
		},
		{
			name: "AllStatus",
			builder: func() string {
				return Topics{}.AllStatus()
			},
			expected: "greenhouse/+/status",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "greenhouse/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestGreenhouseID(t *testing.T) {
	tests := []struct {
		name   string
		topic  string
		wantID string
		wantOK bool
	}{
		{
			name:   "telemetry topic",
			topic:  "greenhouse/abc-123/telemetry",
			wantID: "abc-123",
			wantOK: true,
		},
		{
			name:   "status topic",
			topic:  "greenhouse/abc-123/status",
			wantID: "abc-123",
			wantOK: true,
		},
		{
			name:   "setpoints topic",
			topic:  "greenhouse/abc-123/setpoints",
			wantID: "abc-123",
			wantOK: true,
		},
		{
			name:   "system topic excluded",
			topic:  "greenhouse/system/status",
			wantID: "",
			wantOK: false,
		},
		{
			name:   "wrong prefix",
			topic:  "other/abc-123/telemetry",
			wantID: "",
			wantOK: false,
		},
		{
			name:   "too few segments",
			topic:  "greenhouse/abc-123",
			wantID: "",
			wantOK: false,
		},
		{
			name:   "empty id segment",
			topic:  "greenhouse//telemetry",
			wantID: "",
			wantOK: false,
		},
		{
			name:   "empty topic",
			topic:  "",
			wantID: "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Topics{}.GreenhouseID(tt.topic)
			if ok != tt.wantOK {
				t.Fatalf("GreenhouseID(%q) ok = %v, want %v", tt.topic, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("GreenhouseID(%q) = %q, want %q", tt.topic, id, tt.wantID)
			}
		})
	}
}
