package quizlet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPageData(t *testing.T) {
	blob, err := ExtractPageData(nextDataPage(t, "x", map[string]any{"a": 1}))
	require.NoError(t, err)
	require.JSONEq(t, `{"props":{"pageProps":{"a":1}}}`, string(blob))

	_, err = ExtractPageData([]byte(`<html><body><script>var x = 1;</script></body></html>`))
	require.True(t, IsParseError(err, NotFound), err)

	_, err = ExtractPageData([]byte(`<script id="__NEXT_DATA__" type="text/javascript">{}</script>`))
	require.True(t, IsParseError(err, NotFound), err)
}

func TestParseResponseSinglePage(t *testing.T) {
	body := deckPage(t, "Ignored | Quizlet", singlePageState("French Verbs", items(1, 3)))

	resp, err := ParseResponse(RawPage{URL: "https://quizlet.com/42/flashcards", Body: body}, "42")
	require.NoError(t, err)

	single, ok := resp.(*SinglePageResponse)
	require.True(t, ok, "%T", resp)
	require.Len(t, single.Items, 3)
	require.Equal(t, DeckMetadata{
		ID:         "42",
		Title:      "French Verbs",
		TotalCount: 3,
		PerPage:    3,
	}, single.Metadata)
}

func TestParseResponsePaginated(t *testing.T) {
	body := deckPage(t, "x", paginatedState("Big Deck", 250))

	resp, err := ParseResponse(RawPage{Body: body}, "7")
	require.NoError(t, err)

	paginated, ok := resp.(*PaginatedResponse)
	require.True(t, ok, "%T", resp)
	require.Equal(t, DeckMetadata{
		ID:          "7",
		Title:       "Big Deck",
		PagingToken: "tok-123",
		TotalCount:  250,
		PerPage:     50,
	}, paginated.Metadata)
}

func TestParseResponsePagingMetaWithoutItems(t *testing.T) {
	state := map[string]any{
		"studyable": map[string]any{"title": "Studyable Title"},
		"setPage": map[string]any{
			"pagingMeta": map[string]any{"total": 10, "perPage": 50, "token": "t"},
		},
	}
	resp, err := ParseResponse(RawPage{Body: deckPage(t, "x", state)}, "1")
	require.NoError(t, err)

	paginated, ok := resp.(*PaginatedResponse)
	require.True(t, ok, "%T", resp)
	require.Equal(t, 10, paginated.Metadata.TotalCount)
	require.Equal(t, "Studyable Title", paginated.Metadata.Title)
}

func TestParseResponseFolder(t *testing.T) {
	body := folderPage(t, []any{map[string]any{"id": 5, "name": "Spanish"}})

	resp, err := ParseResponse(RawPage{Body: body}, "")
	require.NoError(t, err)

	folder, ok := resp.(*FolderResponse)
	require.True(t, ok, "%T", resp)
	require.Equal(t, Folder{ID: 5, Name: "Spanish"}, folder.Folder)
	require.Len(t, folder.Sets, 2)
	require.Len(t, folder.StudyMaterials, 2)
}

func TestParseResponseErrors(t *testing.T) {
	testCases := []struct {
		name string
		body []byte
		kind ParseErrorKind
	}{
		{
			name: "no page data",
			body: []byte("<html><title>nothing</title></html>"),
			kind: NotFound,
		},
		{
			name: "broken page data",
			body: []byte(`<script id="__NEXT_DATA__" type="application/json">{"props": </script>`),
			kind: InvalidJSON,
		},
		{
			name: "broken deck state",
			body: nextDataPage(t, "x", map[string]any{"dehydratedReduxStateKey": "{not json"}),
			kind: InvalidJSON,
		},
		{
			name: "no deck state",
			body: nextDataPage(t, "x", map[string]any{"other": true}),
			kind: NotFound,
		},
		{
			name: "deck state without terms",
			body: deckPage(t, "x", map[string]any{"set": map[string]any{"title": "t"}}),
			kind: NotFound,
		},
		{
			name: "two folders",
			body: folderPage(t, []any{
				map[string]any{"id": 1, "name": "a"},
				map[string]any{"id": 2, "name": "b"},
			}),
			kind: UnexpectedFolderCount,
		},
		{
			name: "no folders",
			body: folderPage(t, []any{}),
			kind: UnexpectedFolderCount,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseResponse(RawPage{Body: test.body}, "1")
			require.Error(t, err)
			require.True(t, IsParseError(err, test.kind), "got %v", err)
		})
	}
}

func TestDeckTitleFallsBackToPageTitle(t *testing.T) {
	state := singlePageState("", items(1, 1))
	body := deckPage(t, "Flashcards Animals  in   Spanish Flashcards | Quizlet", state)

	resp, err := ParseResponse(RawPage{Body: body}, "1")
	require.NoError(t, err)
	require.Equal(t, "Animals in Spanish", resp.(*SinglePageResponse).Metadata.Title)
}

func TestExtractTitle(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		url      string
		expected string
	}{
		{
			name:     "flashcards suffix",
			body:     "<title>Biology Flashcards | Quizlet</title>",
			expected: "Biology",
		},
		{
			name:     "plain suffix",
			body:     "<title>Biology | Quizlet</title>",
			expected: "Biology",
		},
		{
			name:     "prefix and whitespace",
			body:     "<title>\n  Flashcards Cell\tBiology | Quizlet \n</title>",
			expected: "Cell Biology",
		},
		{
			name:     "no title uses url basename",
			body:     "<html></html>",
			url:      "https://quizlet.com/123/flashcards",
			expected: "flashcards",
		},
		{
			name:     "nothing at all",
			body:     "<html></html>",
			url:      "",
			expected: "Quizlet Flashcards",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractTitle([]byte(test.body), test.url))
		})
	}
}
