package quizlet

import (
	"net/url"
	"regexp"
	"strings"
)

type InputKind int

const (
	DeckInput InputKind = iota
	FolderInput
)

// Input is a validated url the user asked to import.
type Input struct {
	Kind InputKind
	URL  string
	// DeckID is only set for DeckInput.
	DeckID string
}

// SplitInputs splits text into one url per line, blank lines are dropped.
func SplitInputs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ParseInput validates a single user supplied url. A missing scheme is
// treated as https.
func ParseInput(raw string) (Input, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Input{}, &ValidationError{Kind: MalformedUrl, Input: raw}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" {
		parsed, err = url.Parse("https://" + trimmed)
		if err != nil {
			return Input{}, &ValidationError{Kind: MalformedUrl, Input: raw}
		}
	}
	if !strings.Contains(parsed.Host, "quizlet.com") {
		return Input{}, &ValidationError{Kind: MalformedUrl, Input: raw}
	}

	if strings.Contains(parsed.Path, "/folders/") {
		return Input{Kind: FolderInput, URL: parsed.String()}, nil
	}

	id, err := DeckIDFromPath(parsed.Path)
	if err != nil {
		return Input{}, err
	}
	return Input{Kind: DeckInput, URL: parsed.String(), DeckID: id}, nil
}

var digitsRegex = regexp.MustCompile(`\d+`)

// DeckIDFromPath returns the first run of digits in the path of p, which may
// be a full url or just a path.
func DeckIDFromPath(p string) (string, error) {
	search := p
	parsed, err := url.Parse(strings.TrimSpace(p))
	if err == nil && parsed.Host != "" {
		search = parsed.Path
	}
	id := digitsRegex.FindString(strings.Trim(search, "/"))
	if id == "" {
		return "", &ValidationError{Kind: MissingDeckId, Input: p}
	}
	return id, nil
}

// FlashcardsPath is the page of a deck that embeds its terms.
func FlashcardsPath(deckID string) string {
	return "/" + deckID + "/flashcards"
}
