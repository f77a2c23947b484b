package intake_test

import (
	"strings"
	"testing"

	"intake-go/internal/intake"
)

func testProfile() intake.CaseProfile {
	return intake.NewCaseProfile("Schatz", "mschatz@firmmail.com", "Johnson & Reed", "ARDC_SCHATZ_2025", "LEGAL")
}

func TestScore(t *testing.T) {
	profile := testProfile()

	tests := []struct {
		name    string
		path    string
		content string
		want    int
	}{
		{
			name: "no signals",
			path: "/docs/grocery-list.txt",
			want: 0,
		},
		{
			name: "surname in path",
			path: "/docs/schatz-notes.txt",
			want: 8,
		},
		{
			name: "surname in content",
			path: "/docs/notes.txt",
			content: "Meeting with Schatz on Tuesday",
			want: 8,
		},
		{
			name: "surname match is case-insensitive",
			path: "/docs/SCHATZ_FILE.TXT",
			want: 8,
		},
		{
			name:    "subject email in content",
			path:    "/docs/notes.txt",
			content: "please forward to mschatz@firmmail.com today",
			want:    9,
		},
		{
			name:    "subject email only matches content, not path",
			path:    "/docs/mschatz@firmmail.com.txt",
			content: "nothing here",
			want:    0,
		},
		{
			name:    "opposing counsel in content",
			path:    "/docs/notes.txt",
			content: "received a letter from Johnson & Reed",
			want:    6,
		},
		{
			name:    "legal term",
			path:    "/docs/notes.txt",
			content: "speak to your attorney first",
			want:    3,
		},
		{
			name:    "financial term",
			path:    "/docs/notes.txt",
			content: "the retainer is due",
			want:    4,
		},
		{
			name:    "legal and financial terms sum",
			path:    "/docs/notes.txt",
			content: "counsel sent the invoice",
			want:    7,
		},
		{
			name:    "multiple legal terms count once",
			path:    "/docs/notes.txt",
			content: "attorney legal counsel",
			want:    3,
		},
		{
			name:    "sum clamps at ten",
			path:    "/docs/schatz.txt",
			content: "mschatz@firmmail.com Johnson & Reed attorney retainer",
			want:    10,
		},
		{
			name:    "surname plus legal term",
			path:    "/docs/schatz.txt",
			content: "legal matters",
			want:    10, // 8 + 3 clamped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intake.Score(profile, tt.path, tt.content)
			if got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.path, tt.content, got, tt.want)
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	profile := testProfile()
	path := "/docs/schatz-billing.txt"
	content := "invoice from counsel regarding mschatz@firmmail.com"

	first := intake.Score(profile, path, content)
	for i := 0; i < 10; i++ {
		if got := intake.Score(profile, path, content); got != first {
			t.Fatalf("Score() = %d on repeat call, want %d", got, first)
		}
	}
}

func TestScore_EmptyProfileFieldsNeverMatch(t *testing.T) {
	// A profile with empty match terms must not award points for the
	// surname/email/counsel rules no matter the input.
	profile := intake.NewCaseProfile("", "", "", "CASE", "LEGAL")

	got := intake.Score(profile, "/docs/anything.txt", "some ordinary text")
	if got != 0 {
		t.Errorf("Score() with empty profile = %d, want 0", got)
	}
}

func TestScore_Bounds(t *testing.T) {
	profile := testProfile()
	content := strings.Repeat("schatz mschatz@firmmail.com johnson & reed attorney retainer ", 50)

	got := intake.Score(profile, "/docs/schatz.txt", content)
	if got < 0 || got > 10 {
		t.Errorf("Score() = %d, want within [0, 10]", got)
	}
}

func TestNewCaseProfile_Normalizes(t *testing.T) {
	profile := intake.NewCaseProfile("  SCHATZ  ", " MSchatz@FirmMail.com ", " Johnson & Reed ", " ARDC_SCHATZ_2025 ", " LEGAL ")

	if profile.Surname != "schatz" {
		t.Errorf("Surname = %q, want %q", profile.Surname, "schatz")
	}
	if profile.SubjectEmail != "mschatz@firmmail.com" {
		t.Errorf("SubjectEmail = %q, want %q", profile.SubjectEmail, "mschatz@firmmail.com")
	}
	if profile.OpposingCounsel != "johnson & reed" {
		t.Errorf("OpposingCounsel = %q, want %q", profile.OpposingCounsel, "johnson & reed")
	}
	if profile.CaseTag != "ARDC_SCHATZ_2025" {
		t.Errorf("CaseTag = %q, want %q", profile.CaseTag, "ARDC_SCHATZ_2025")
	}
}
