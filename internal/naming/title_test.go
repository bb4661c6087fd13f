package naming

import "testing"

func TestTitleFromPrompt(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{prompt: "", want: "Untitled Soundscape"},
		{prompt: "   \t\n ", want: "Untitled Soundscape"},
		{prompt: "calm ambient rain", want: "Calm Ambient Rain"},
		{prompt: "  deep   focus\npiano ", want: "Deep Focus Piano"},
	}
	for _, tc := range cases {
		if got := TitleFromPrompt(tc.prompt); got != tc.want {
			t.Errorf("TitleFromPrompt(%q) = %q, want %q", tc.prompt, got, tc.want)
		}
	}
}

func TestTitleFromPromptTruncatesOnWordBoundary(t *testing.T) {
	prompt := "slow evolving ambient drone with tape hiss and distant thunder rolling over hills"
	got := TitleFromPrompt(prompt)
	if len(got) > maxTitleLength {
		t.Fatalf("title %q exceeds %d chars", got, maxTitleLength)
	}
	if got[len(got)-1] == ' ' {
		t.Fatalf("title %q ends with whitespace", got)
	}
}

func TestTrackTitle(t *testing.T) {
	if got := TrackTitle("Morning Dew", "ignored prompt", 0); got != "Morning Dew" {
		t.Fatalf("TrackTitle with provider title = %q", got)
	}
	if got := TrackTitle("  ", "lofi beats", 2); got != "Lofi Beats #3" {
		t.Fatalf("TrackTitle fallback = %q, want %q", got, "Lofi Beats #3")
	}
}
