package quizlet

import (
	"encoding/json"
	"testing"

	"quizlet-importer/internal/richtext"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNormalizeItem(t *testing.T) {
	item := StudiableItem{
		ID: 1,
		CardSides: []CardSide{
			{
				Label: "word",
				Media: []Media{
					{
						Type:      MediaText,
						PlainText: ptr("perro"),
						TtsURL:    "/tts/es.mp3?v=14&b=cGVycm8&s=abc",
						RichText:  json.RawMessage(`{"type":"doc","content":[{"type":"text","text":"perro","marks":[{"type":"b"}]}]}`),
					},
				},
			},
			{
				Label: "definition",
				Media: []Media{
					{Type: MediaText, PlainText: ptr("dog"), TtsURL: "/tts/en.mp3?v=14&s=def"},
					{Type: MediaImage, URL: "https://o.quizlet.com/first_m.jpg"},
					{Type: MediaImage, URL: "https://o.quizlet.com/second_m.jpg"},
				},
			},
			{
				Label: "location",
				Media: []Media{{Type: MediaText, PlainText: ptr("ignored")}},
			},
		},
	}

	term, err := NormalizeItem(item)
	require.NoError(t, err)

	expected := Term{
		Word:       "perro",
		Definition: "dog",
		WordRichText: &richtext.Fragment{Children: []richtext.Node{
			&richtext.Text{Text: "perro", Marks: []richtext.Mark{{Kind: richtext.Bold}}},
		}},
		WordAudioURL:       "/tts/es.mp3?v=14&b=cGVycm8&s=abc",
		DefinitionAudioURL: "/tts/en.mp3?v=14&s=def",
		ImageURL:           "https://o.quizlet.com/second_m.jpg",
	}
	if diff := cmp.Diff(expected, term); diff != "" {
		t.Fatal(diff)
	}
}

func TestNormalizeItemPhotoOverridesMedia(t *testing.T) {
	item := StudiableItem{
		CardSides: []CardSide{
			{Label: "word", Media: []Media{{Type: MediaText, PlainText: ptr("a")}}},
			{Label: "definition", Media: []Media{{Type: MediaImage, URL: "https://o.quizlet.com/x.jpg"}}},
		},
		Photo: "2,abcdef",
	}
	term, err := NormalizeItem(item)
	require.NoError(t, err)
	require.Equal(t, "https://o.quizlet.com/i/abcdef.jpg", term.ImageURL)

	item.Photo = "9,a,b"
	_, err = NormalizeItem(item)
	require.True(t, IsParseError(err, UnknownPhotoFormat), err)
}

func TestNormalizeItemBrokenRichText(t *testing.T) {
	item := StudiableItem{
		CardSides: []CardSide{{
			Label: "word",
			Media: []Media{{Type: MediaText, PlainText: ptr("a"), RichText: json.RawMessage(`{"type": 5}`)}},
		}},
	}
	_, err := NormalizeItem(item)
	require.True(t, IsParseError(err, InvalidJSON), err)
}

func TestNormalizeItems(t *testing.T) {
	raw := []StudiableItem{
		{CardSides: []CardSide{{Label: "word", Media: []Media{{PlainText: ptr("one")}}}}},
		{CardSides: []CardSide{{Label: "word", Media: []Media{{PlainText: ptr("")}}}}},
		{CardSides: []CardSide{{Label: "definition", Media: []Media{{PlainText: ptr("three")}}}}},
	}

	terms, skipped, err := NormalizeItems(raw)
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, terms, 2)
	require.Equal(t, "one", terms[0].Word)
	require.Equal(t, "three", terms[1].Definition)
}

// Every item becomes a term except blank ones, so the term count only falls
// short of the item count by the number skipped.
func TestNormalizeItemsCount(t *testing.T) {
	var items []StudiableItem
	for _, word := range []string{"uno", "dos", "tres", "cuatro"} {
		items = append(items, StudiableItem{CardSides: []CardSide{
			{Label: "word", Media: []Media{{PlainText: ptr(word)}}},
			{Label: "definition", Media: []Media{{PlainText: ptr("")}}},
		}})
	}

	terms, skipped, err := NormalizeItems(items)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, terms, len(items))

	blank := StudiableItem{CardSides: []CardSide{
		{Label: "word", Media: []Media{{PlainText: ptr("")}}},
		{Label: "definition"},
	}}
	items = append(items[:2], append([]StudiableItem{blank}, items[2:]...)...)

	terms, skipped, err = NormalizeItems(items)
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, terms, len(items)-1)
	require.Equal(t, "tres", terms[2].Word)
}

func TestDecodePhoto(t *testing.T) {
	testCases := []struct {
		token    string
		expected string
	}{
		{token: "1,12,3456,abcd1234,a", expected: "https://farm12.staticflickr.com/3456/abcd1234_a.jpg"},
		{token: "2,xyz", expected: "https://o.quizlet.com/i/xyz.jpg"},
		{token: "3,abc,png", expected: "https://o.quizlet.com/abc.png"},
	}
	for _, test := range testCases {
		url, err := DecodePhoto(test.token)
		require.NoError(t, err, test.token)
		require.Equal(t, test.expected, url)
	}

	for _, token := range []string{"9,1,2,3,4", "", "1,12,3456", "3,abc"} {
		_, err := DecodePhoto(token)
		require.True(t, IsParseError(err, UnknownPhotoFormat), "token %q: %v", token, err)
	}
}
