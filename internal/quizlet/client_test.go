package quizlet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"quizlet-importer/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeQuizlet struct {
	t     testing.TB
	total int

	mu          sync.Mutex
	cookies     []string
	pages       []int
	containerId []string
}

func (f *fakeQuizlet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	cookie, err := r.Cookie("qlts")
	if err == nil {
		f.cookies = append(f.cookies, cookie.Value)
	}
	f.mu.Unlock()

	switch r.URL.Path {
	case "/1/flashcards":
		w.Write(deckPage(f.t, "x", singlePageState("Single", items(1, 3))))
	case "/2/flashcards":
		w.Write(deckPage(f.t, "x", paginatedState("Paged", f.total)))
	case "/3/flashcards":
		w.Header().Set(CaptchaHeader, "1")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>challenge</html>"))
	case "/4/flashcards":
		w.WriteHeader(http.StatusForbidden)
	case "/user/me/folders/langs":
		w.Write(folderPage(f.t, []any{map[string]any{"id": 5, "name": "Langs"}}))
	case "/webapi/3.4/studiable-item-documents":
		query := r.URL.Query()
		page, _ := strconv.Atoi(query.Get("page"))
		perPage, _ := strconv.Atoi(query.Get("perPage"))
		f.mu.Lock()
		f.pages = append(f.pages, page)
		f.containerId = append(f.containerId, query.Get("filters[studiableContainerId]"))
		f.mu.Unlock()

		start := (page-1)*perPage + 1
		end := min(start+perPage-1, f.total)
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(mustJSON(f.t, map[string]any{
			"responses": []any{
				map[string]any{"models": map[string]any{"studiableItem": items(start, end)}},
			},
		})))
	case "/media/a.jpg":
		w.Write([]byte("jpeg bytes"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupClient(t testing.TB, total int) (*Client, *fakeQuizlet, *telemetry.Recorder) {
	fake := &fakeQuizlet{t: t, total: total}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	rec := &telemetry.Recorder{}
	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL,
		Qlts:              "session-cookie",
		RequestsPerSecond: 1000,
		Timeout:           time.Second * 5,
	}, rec)
	require.NoError(t, err)
	return client, fake, rec
}

func TestClientSinglePageDeck(t *testing.T) {
	client, fake, _ := setupClient(t, 0)

	deck, err := client.Deck(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "Single", deck.Metadata.Title)
	require.Len(t, deck.Terms, 3)
	require.Empty(t, fake.pages)
	require.Equal(t, []string{"session-cookie"}, fake.cookies)
}

func TestClientPaginatedDeck(t *testing.T) {
	client, fake, _ := setupClient(t, 230)

	deck, err := client.Deck(context.Background(), "2")
	require.NoError(t, err)
	require.Len(t, deck.Terms, 230)
	require.Equal(t, "word 230", deck.Terms[229].Word)
	require.Equal(t, []int{1, 2, 3}, fake.pages)
	require.Equal(t, []string{"2", "2", "2"}, fake.containerId)
}

func TestClientFetchErrors(t *testing.T) {
	client, _, _ := setupClient(t, 0)

	_, err := client.Deck(context.Background(), "3")
	var ferr *FetchError
	require.True(t, errors.As(err, &ferr), err)
	require.Equal(t, http.StatusForbidden, ferr.Status)
	require.True(t, ferr.Captcha)
	require.Contains(t, ferr.Diagnostic, "challenge")
	require.Contains(t, ferr.Diagnostic, "<NO BODY>")

	_, err = client.Deck(context.Background(), "4")
	require.True(t, errors.As(err, &ferr), err)
	require.Equal(t, http.StatusForbidden, ferr.Status)
	require.False(t, ferr.Captcha)

	_, err = client.Deck(context.Background(), "404")
	require.True(t, errors.As(err, &ferr), err)
	require.Equal(t, http.StatusNotFound, ferr.Status)
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL, RequestsPerSecond: 1000}, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = client.Deck(context.Background(), "1")
	var ferr *FetchError
	require.True(t, errors.As(err, &ferr), err)
	require.NotNil(t, ferr.Network)
	require.Zero(t, ferr.Status)
}

func TestClientFolder(t *testing.T) {
	client, _, _ := setupClient(t, 0)

	members, err := client.Folder(context.Background(), client.BaseUrl.String()+"/user/me/folders/langs", "")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "Langs", members[0].DeckName)

	_, err = client.Folder(context.Background(), "/1/flashcards", "")
	require.True(t, IsParseError(err, NotFound), err)
}

func TestClientMedia(t *testing.T) {
	client, _, _ := setupClient(t, 0)

	data, err := client.Media(context.Background(), client.BaseUrl.String()+"/media/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "jpeg bytes", string(data))

	_, err = client.Media(context.Background(), client.BaseUrl.String()+"/media/missing.jpg")
	require.Error(t, err)
}
