package email

import (
	"strings"
	"testing"
)

func TestCampaignCityCode(t *testing.T) {
	tests := []struct {
		campaign string
		want     string
	}{
		{"amsterdam01", "amsterdam"},
		{"nyc12", "nyc"},
		{"ab", "ab"},
		{"a", "a"},
		{"", ""},
		{"abc", "a"},
	}
	for _, tc := range tests {
		if got := CampaignCityCode(tc.campaign); got != tc.want {
			t.Errorf("CampaignCityCode(%q) = %q, want %q", tc.campaign, got, tc.want)
		}
	}
}

func TestLeadNotificationSubject(t *testing.T) {
	n := Notification{FirstName: "Jane", LastName: "Doe", Campaign: "berlin07"}
	if got := LeadNotificationSubject(n); got != "Jane Doe - berlin" {
		t.Fatalf("subject = %q", got)
	}
}

func TestLeadNotificationBodyIncludesFields(t *testing.T) {
	n := Notification{
		FirstName: "Jane", LastName: "Doe",
		Email: "jane@example.com", Phone: "+15550100",
		City: "Berlin", ZipCode: "10115",
		Age: 24, Gender: "Female",
		Campaign: "berlin07", Score: 81, Category: "Commercial",
		ImageURL: "https://cdn.example.com/lead-images/x.jpeg",
		OptIn:    true,
	}
	body := leadNotificationBody(n)
	for _, want := range []string{"jane@example.com", "+15550100", "Berlin, 10115", "Score: 81", "Commercial", "opt-in: Yes", "lead-images/x.jpeg"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
