package models

import (
	"testing"
	"time"
)

func TestLinkIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{name: "no expiry never expires", expiresAt: nil, want: false},
		{name: "strictly past is expired", expiresAt: &past, want: true},
		{name: "exactly now is still valid", expiresAt: &now, want: false},
		{name: "future is valid", expiresAt: &future, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := Link{ExpiresAt: tt.expiresAt}
			if got := link.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinkOwnedBy(t *testing.T) {
	owner := "0b9fa1ad-6aa9-4a39-a62e-4a4bdde4fa0f"
	stranger := "5f2b1f53-3e3e-4b8f-9a40-90b56c9f11a1"

	tests := []struct {
		name     string
		userID   *string
		callerID string
		want     bool
	}{
		{name: "owner matches", userID: &owner, callerID: owner, want: true},
		{name: "different caller", userID: &owner, callerID: stranger, want: false},
		{name: "empty caller", userID: &owner, callerID: "", want: false},
		{name: "anonymous link rejects owner id", userID: nil, callerID: owner, want: false},
		{name: "anonymous link rejects empty caller", userID: nil, callerID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := Link{UserID: tt.userID}
			if got := link.OwnedBy(tt.callerID); got != tt.want {
				t.Errorf("OwnedBy(%q) = %v, want %v", tt.callerID, got, tt.want)
			}
		})
	}
}
