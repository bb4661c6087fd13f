// Package naming derives human-readable display titles for tracks and
// compositions from the generation prompt.
package naming

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxTitleLength = 60

// TitleFromPrompt normalizes whitespace in the prompt, truncates on a word
// boundary and title-cases the result. Empty prompts fall back to a generic
// title.
func TitleFromPrompt(prompt string) string {
	c := cases.Title(language.Und)
	words := strings.Fields(prompt)
	if len(words) == 0 {
		return "Untitled Soundscape"
	}
	title := strings.Join(words, " ")
	if len(title) > maxTitleLength {
		cut := title[:maxTitleLength]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		title = cut
	}
	return c.String(title)
}

// TrackTitle names the nth track produced for a prompt. When the provider
// already supplied a title it wins; otherwise the prompt-derived title is
// numbered.
func TrackTitle(providerTitle, prompt string, index int) string {
	if t := strings.TrimSpace(providerTitle); t != "" {
		return t
	}
	return fmt.Sprintf("%s #%d", TitleFromPrompt(prompt), index+1)
}
