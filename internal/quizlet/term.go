package quizlet

import (
	"fmt"
	"strings"

	"quizlet-importer/internal/richtext"
)

const (
	labelWord       = "word"
	labelDefinition = "definition"
)

// NormalizeItem flattens a card into a Term. When several image media are
// present the last one is kept, quizlet does not say which one is meant.
func NormalizeItem(item StudiableItem) (Term, error) {
	var term Term
	for _, side := range item.CardSides {
		for _, media := range side.Media {
			if media.PlainText != nil {
				rich, err := richtext.Parse(media.RichText)
				if err != nil {
					return Term{}, &ParseError{
						Kind:   InvalidJSON,
						Detail: fmt.Sprintf("rich text of item %d", item.ID),
						Err:    err,
					}
				}
				switch side.Label {
				case labelWord:
					term.Word = *media.PlainText
					term.WordRichText = rich
					term.WordAudioURL = media.TtsURL
				case labelDefinition:
					term.Definition = *media.PlainText
					term.DefinitionRichText = rich
					term.DefinitionAudioURL = media.TtsURL
				}
			}
			if media.Type == MediaImage && media.URL != "" {
				term.ImageURL = media.URL
			}
		}
	}

	if item.Photo != "" {
		photo, err := DecodePhoto(item.Photo)
		if err != nil {
			return Term{}, err
		}
		term.ImageURL = photo
	}
	return term, nil
}

// NormalizeItems normalizes items in order, items with neither a word nor a
// definition are left out and counted in skipped.
func NormalizeItems(items []StudiableItem) (terms []Term, skipped int, err error) {
	terms = make([]Term, 0, len(items))
	for _, item := range items {
		term, err := NormalizeItem(item)
		if err != nil {
			return nil, 0, err
		}
		if term.Word == "" && term.Definition == "" {
			skipped++
			continue
		}
		terms = append(terms, term)
	}
	return terms, skipped, nil
}

// DecodePhoto expands a legacy `type,a,b,...` photo token into its image url.
func DecodePhoto(token string) (string, error) {
	parts := strings.Split(token, ",")
	unknown := func(detail string) error {
		return &ParseError{
			Kind:   UnknownPhotoFormat,
			Detail: fmt.Sprintf("%s in %q", detail, token),
		}
	}

	need := 0
	switch parts[0] {
	case "1":
		need = 5
	case "2":
		need = 2
	case "3":
		need = 3
	default:
		return "", unknown(fmt.Sprintf("photo type %q", parts[0]))
	}
	if len(parts) < need {
		return "", unknown(fmt.Sprintf("expected %d parts, got %d", need, len(parts)))
	}

	switch parts[0] {
	case "1":
		return fmt.Sprintf("https://farm%s.staticflickr.com/%s/%s_%s.jpg", parts[1], parts[2], parts[3], parts[4]), nil
	case "2":
		return fmt.Sprintf("https://o.quizlet.com/i/%s.jpg", parts[1]), nil
	default:
		return fmt.Sprintf("https://o.quizlet.com/%s.%s", parts[1], parts[2]), nil
	}
}
