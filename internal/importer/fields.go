package importer

import (
	"context"
	"fmt"
	"html"
	"regexp"

	"quizlet-importer/internal/collection"
	"quizlet-importer/internal/quizlet"
	"quizlet-importer/internal/richtext"

	"github.com/microcosm-cc/bluemonday"
)

// newFieldPolicy allows exactly the markup the rich text renderer and Ankify
// produce, anything else in a term is dropped.
func newFieldPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "u", "div", "br", "span", "sub", "sup")
	p.AllowAttrs("class").
		Matching(regexp.MustCompile(`^[\w\- ]+$`)).
		OnElements("span")
	p.AllowAttrs("style").
		Matching(regexp.MustCompile(`^background-color: light-dark\(#[0-9a-fA-F]{6}, #[0-9a-fA-F]{6}\);$`)).
		OnElements("span")
	return p
}

// textField is the html of one side of a term.
func (s *Session) textField(plain string, rich richtext.Node) string {
	out := richtext.Ankify(plain)
	if s.cfg.RichTextFormatting {
		out = richtext.Render(rich, out)
	}
	return s.policy.Sanitize(out)
}

// noteFields builds the fields of the note for term, downloading its media
// into the collection. Media that cannot be downloaded leaves its field
// empty and is counted in mediaFailed.
func (s *Session) noteFields(ctx context.Context, tx *collection.Tx, term quizlet.Term) (fields map[string]string, mediaFailed int) {
	fields = map[string]string{
		collection.FieldFront: s.textField(term.Word, term.WordRichText),
		collection.FieldBack:  s.textField(term.Definition, term.DefinitionRichText),
	}

	if term.ImageURL != "" {
		name, err := s.media.download(ctx, tx, term.ImageURL)
		if err == nil {
			fields[collection.FieldImage] = fmt.Sprintf(`<img src="%s">`, html.EscapeString(name))
		} else {
			mediaFailed++
		}
	}

	if s.cfg.AddAudio {
		audio := []struct {
			url   string
			field string
		}{
			{url: term.WordAudioURL, field: collection.FieldFrontAudio},
			{url: term.DefinitionAudioURL, field: collection.FieldBackAudio},
		}
		for _, a := range audio {
			if a.url == "" {
				continue
			}
			name, err := s.media.download(ctx, tx, a.url)
			if err != nil {
				mediaFailed++
				continue
			}
			fields[a.field] = fmt.Sprintf("[sound:%s]", name)
		}
	}

	if s.cfg.AddReverse {
		fields[collection.FieldAddReverse] = "y"
	}
	return fields, mediaFailed
}
