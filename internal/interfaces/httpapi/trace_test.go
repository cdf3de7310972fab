package httpapi

import (
	"testing"

	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.GetBoard", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSessionAttributes(t *testing.T) {
	tests := []struct {
		name    string
		session usecase.Session
		want    map[string]string
	}{
		{
			name:    "anonymous",
			session: usecase.Session{},
			want:    map[string]string{"lms.admin": "false"},
		},
		{
			name:    "player ignores admin-only fields",
			session: usecase.Session{ViewerID: "Alice", RoundOverride: 5, SimulateReveal: true},
			want:    map[string]string{"lms.admin": "false", "lms.viewer_id": "Alice"},
		},
		{
			name:    "admin preview",
			session: usecase.Session{IsAdmin: true, RoundOverride: 5, SimulateReveal: true},
			want:    map[string]string{"lms.admin": "true", "lms.round_override": "5", "lms.simulate_reveal": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string]string)
			for _, attr := range sessionAttributes(tt.session) {
				got[string(attr.Key)] = attr.Value.Emit()
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("attribute %s: expected %q, got %q", k, v, got[k])
				}
			}
		})
	}
}
