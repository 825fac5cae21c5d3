package quizlet

import (
	"encoding/json"
	"fmt"
	"html"
	"testing"
)

func textMedia(text, tts string) map[string]any {
	return map[string]any{
		"type":      MediaText,
		"plainText": text,
		"ttsUrl":    tts,
		"richText":  nil,
	}
}

func imageMedia(url string) map[string]any {
	return map[string]any{
		"type": MediaImage,
		"url":  url,
	}
}

func item(id int, word, definition string) map[string]any {
	return map[string]any{
		"id": id,
		"cardSides": []any{
			map[string]any{
				"label": "word",
				"media": []any{textMedia(word, fmt.Sprintf("/tts/en.mp3?v=1&s=w%d", id))},
			},
			map[string]any{
				"label": "definition",
				"media": []any{textMedia(definition, fmt.Sprintf("/tts/en.mp3?v=1&s=d%d", id))},
			},
		},
	}
}

func items(from, to int) []any {
	var out []any
	for i := from; i <= to; i++ {
		out = append(out, item(i, fmt.Sprintf("word %d", i), fmt.Sprintf("definition %d", i)))
	}
	return out
}

func mustJSON(t testing.TB, value any) string {
	out, err := json.Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

// nextDataPage wraps page props into a page the way quizlet serves them.
func nextDataPage(t testing.TB, title string, pageProps any) []byte {
	data := mustJSON(t, map[string]any{
		"props": map[string]any{
			"pageProps": pageProps,
		},
	})
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<title>%s</title>
</head>
<body>
	<div id="__next"></div>
	<script id="__NEXT_DATA__" type="application/json">%s</script>
</body>
</html>`, html.EscapeString(title), data))
}

// deckPage is a deck page whose redux state is the given value.
func deckPage(t testing.TB, title string, state any) []byte {
	return nextDataPage(t, title, map[string]any{
		"dehydratedReduxStateKey": mustJSON(t, state),
	})
}

func singlePageState(title string, its []any) map[string]any {
	return map[string]any{
		"set": map[string]any{"title": title},
		"setPage": map[string]any{
			"pagingMeta": map[string]any{"total": len(its), "perPage": 500, "token": "tok"},
		},
		"studyModesCommon": map[string]any{
			"studiableData": map[string]any{"studiableItems": its},
		},
	}
}

func paginatedState(title string, total int) map[string]any {
	return map[string]any{
		"set": map[string]any{"title": title},
		"setPage": map[string]any{
			"pagingMeta": map[string]any{"total": total, "perPage": 50, "token": "tok-123"},
		},
		"studyModesCommon": map[string]any{
			"studiableData": map[string]any{"studiableItems": items(1, 50)},
		},
	}
}

func folderPage(t testing.TB, folders []any) []byte {
	return nextDataPage(t, "Folder | Quizlet", map[string]any{
		"models": map[string]any{
			"folder": folders,
			"set": []any{
				map[string]any{"id": 11, "title": "First", "_webUrl": "https://quizlet.com/11/first-flash-cards/"},
				map[string]any{"id": 22, "title": "Second", "_webUrl": "https://quizlet.com/22/second-flash-cards/"},
			},
			"folderStudyMaterial": []any{
				map[string]any{"setId": 22},
				map[string]any{"setId": 11},
			},
		},
	})
}
