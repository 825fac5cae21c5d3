package importer

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"quizlet-importer/internal/collection"
	"quizlet-importer/internal/components/chrono"
	"quizlet-importer/internal/components/telemetry"
	"quizlet-importer/internal/config"
	"quizlet-importer/internal/db"
	"quizlet-importer/internal/quizlet"
	"quizlet-importer/internal/richtext"
	"quizlet-importer/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	decks   map[string]quizlet.Deck
	errs    map[string]error
	folders map[string][]quizlet.FolderMember
	media   map[string][]byte
	// if set, Deck waits for it to be closed
	block chan struct{}
	calls []string
}

func (f *fakeSource) Deck(ctx context.Context, deckID string) (quizlet.Deck, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "deck "+deckID)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err, ok := f.errs[deckID]; ok {
		return quizlet.Deck{}, err
	}
	deck, ok := f.decks[deckID]
	if !ok {
		return quizlet.Deck{}, &quizlet.FetchError{URL: deckID, Status: http.StatusNotFound}
	}
	return deck, nil
}

func (f *fakeSource) Folder(ctx context.Context, folderUrl string, parentDeck string) ([]quizlet.FolderMember, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "folder "+folderUrl)
	f.mu.Unlock()

	members, ok := f.folders[folderUrl]
	if !ok {
		return nil, &quizlet.ParseError{Kind: quizlet.NotFound}
	}
	// like the real folder page, decks go under the parent deck if one is
	// given and under the folder's own name otherwise
	out := make([]quizlet.FolderMember, len(members))
	for i, m := range members {
		out[i] = m
		if parentDeck != "" {
			out[i].DeckName = parentDeck
		}
	}
	return out, nil
}

func (f *fakeSource) Media(ctx context.Context, mediaUrl string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "media "+mediaUrl)
	f.mu.Unlock()

	data, ok := f.media[mediaUrl]
	if !ok {
		return nil, fmt.Errorf("no media at %s", mediaUrl)
	}
	return data, nil
}

func deck(id, title string, terms ...quizlet.Term) quizlet.Deck {
	return quizlet.Deck{
		Metadata: quizlet.DeckMetadata{ID: id, Title: title, TotalCount: len(terms), PerPage: len(terms)},
		Terms:    terms,
	}
}

type harness struct {
	session    *Session
	collection *collection.Collection
	clock      *chrono.FakeImpl
	rec        *telemetry.Recorder
	statuses   []string
}

func setup(t testing.TB, cfg config.Config, source Source) *harness {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "internal/importer",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	h := &harness{
		clock: chrono.NewFakeImpl(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		rec:   &telemetry.Recorder{},
	}
	coll, err := collection.New(res.DB, filepath.Join(res.Dir, "media"), h.clock, h.rec)
	require.NoError(t, err)
	h.collection = coll

	h.session = NewSession(Options{
		Config:     cfg,
		Source:     source,
		Collection: coll,
		Time:       h.clock,
		Tel:        h.rec,
		OnStatus: func(status string) {
			h.statuses = append(h.statuses, status)
		},
	})
	return h
}

func TestImportDeck(t *testing.T) {
	source := &fakeSource{
		decks: map[string]quizlet.Deck{
			"123": deck("123", "Spanish",
				quizlet.Term{
					Word:       "hola",
					Definition: "hello",
					WordRichText: &richtext.Paragraph{Children: []richtext.Node{
						&richtext.Text{Text: "hola", Marks: []richtext.Mark{{Kind: richtext.Bold}}},
					}},
					WordAudioURL: "https://quizlet.com/tts/es.mp3?v=14&b=aG9sYQ&s=sig1",
					ImageURL:     "https://o.quizlet.com/abc_m.jpg",
				},
				quizlet.Term{Word: "adios", Definition: "*bye*\nnow"},
			),
		},
		media: map[string][]byte{
			"https://quizlet.com/tts/es.mp3?v=14&b=aG9sYQ&s=sig1": []byte("audio"),
			"https://o.quizlet.com/abc.jpg":                       []byte("image"),
		},
	}
	h := setup(t, config.Default(), source)

	report := h.session.Import(context.Background(), []string{"https://quizlet.com/123/spanish-flash-cards/"}, "")
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	require.Equal(t, Imported, res.Outcome)
	require.Equal(t, "Spanish", res.DeckName)
	require.Equal(t, 2, res.Terms)
	require.Equal(t, 0, res.MediaFailed)

	require.Equal(t, []string{
		"There are 1 urls in total. Starting",
		"Connecting to Quizlet...",
		"Importing deck Spanish...",
		"Importing deck Spanish [1/2] ...",
		"Importing deck Spanish [2/2] ...",
		"Success! Imported Spanish (2 cards)",
	}, h.statuses)
	require.Equal(t, []time.Duration{DefaultStartPause}, h.clock.Sleeps())

	notes, err := h.collection.Notes(context.Background(), "Spanish")
	require.NoError(t, err)
	require.Len(t, notes, 2)

	diff := cmp.Diff(map[string]string{
		collection.FieldFront:      "<div><b>hola</b></div>",
		collection.FieldBack:       "hello",
		collection.FieldImage:      `<img src="quizlet-abc.jpg">`,
		collection.FieldFrontAudio: "[sound:quizlet-es-sig1.mp3]",
	}, notes[0].Fields)
	require.Empty(t, diff)

	diff = cmp.Diff(map[string]string{
		collection.FieldFront: "adios",
		collection.FieldBack:  "<b>bye</b><br>now",
	}, notes[1].Fields)
	require.Empty(t, diff)

	decks, err := h.collection.Decks(context.Background())
	require.NoError(t, err)
	require.Len(t, decks, 1)
	require.EqualValues(t, 2, decks[0].Cards)
}

func TestImportReverseAndNoAudio(t *testing.T) {
	source := &fakeSource{
		decks: map[string]quizlet.Deck{
			"7": deck("7", "Verbs", quizlet.Term{
				Word:         "ser",
				Definition:   "to be",
				WordAudioURL: "https://quizlet.com/tts/es.mp3?v=1&s=x",
			}),
		},
	}
	cfg := config.Default()
	cfg.AddAudio = false
	cfg.AddReverse = true
	h := setup(t, cfg, source)

	report := h.session.Import(context.Background(), []string{"quizlet.com/7"}, "Languages")
	require.Equal(t, Imported, report.Results[0].Outcome)
	require.Equal(t, "Languages::Verbs", report.Results[0].DeckName)

	notes, err := h.collection.Notes(context.Background(), "Languages::Verbs")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "y", notes[0].Fields[collection.FieldAddReverse])
	require.NotContains(t, notes[0].Fields, collection.FieldFrontAudio)

	// audio urls are never downloaded without the audio fields
	require.Equal(t, []string{"deck 7"}, source.calls)

	decks, err := h.collection.Decks(context.Background())
	require.NoError(t, err)
	for _, d := range decks {
		if d.Name == "Languages::Verbs" {
			require.EqualValues(t, 2, d.Cards)
		}
	}

	nt, ok, err := h.collection.NoteType(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, nt.HasFields(collection.FieldFrontAudio))
}

func TestImportFailuresDoNotStopOthers(t *testing.T) {
	source := &fakeSource{
		decks: map[string]quizlet.Deck{
			"4": deck("4", "Four", quizlet.Term{Word: "a", Definition: "b"}),
		},
		errs: map[string]error{
			"3": &quizlet.FetchError{Status: http.StatusForbidden, Captcha: true},
			"5": &quizlet.FetchError{Status: http.StatusForbidden},
			"6": &quizlet.FetchError{Status: http.StatusInternalServerError, Diagnostic: "---- REQUEST ----"},
		},
	}
	h := setup(t, config.Default(), source)

	report := h.session.Import(context.Background(), []string{
		"   ",
		"https://example.com/1",
		"https://quizlet.com/folders-are-not-here/abc",
		"https://quizlet.com/3/captcha",
		"https://quizlet.com/5/private",
		"https://quizlet.com/6/broken",
		"https://quizlet.com/9/missing",
		"https://quizlet.com/4/four",
	}, "")

	var statuses []string
	for _, res := range report.Results {
		statuses = append(statuses, res.Status)
	}
	require.Equal(t, []string{
		"Oops! You forgot the deck URL :(",
		"Oops! That's not a Quizlet URL :(",
		"Oops! No deck ID found in path /folders-are-not-here/abc :(",
		"Sorry, it's behind a captcha.",
		"Sorry, this is a private deck :(",
		"Unknown error",
		"Can't find a deck with the ID 9",
		"Success! Imported Four (1 cards)",
	}, statuses)
	require.Equal(t, "---- REQUEST ----", report.Results[5].Diagnostic)
	require.Equal(t, 1, report.Count(Imported))
	require.Equal(t, 7, report.Count(Failed))

	// one pause per deck actually requested
	require.Equal(t, []time.Duration{
		DefaultStartPause,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
	}, h.clock.Sleeps())

	// the summary is the last status
	require.Equal(t, report.Summary(), h.statuses[len(h.statuses)-1])
	require.NotEmpty(t, h.rec.Reports("warning"))
}

func TestImportFolder(t *testing.T) {
	folderUrl := "https://quizlet.com/user/folders/stuff/sets"
	source := &fakeSource{
		decks: map[string]quizlet.Deck{
			"11": deck("11", "Eleven", quizlet.Term{Word: "a", Definition: "b"}),
			"22": deck("22", "Twenty Two", quizlet.Term{Word: "c", Definition: "d"}),
		},
		folders: map[string][]quizlet.FolderMember{
			folderUrl: {
				{URL: "https://quizlet.com/22/twenty-two/", DeckName: "My Folder"},
				{URL: "https://quizlet.com/11/eleven/", DeckName: "My Folder"},
			},
		},
	}
	h := setup(t, config.Default(), source)

	report := h.session.Import(context.Background(), []string{folderUrl}, "")
	require.Len(t, report.Results, 2)
	require.Equal(t, "My Folder::Twenty Two", report.Results[0].DeckName)
	require.Equal(t, "My Folder::Eleven", report.Results[1].DeckName)
	require.Equal(t, 2, report.Count(Imported))

	require.Equal(t, []string{"folder " + folderUrl, "deck 22", "deck 11"}, source.calls)
	require.Equal(t, []time.Duration{
		DefaultStartPause,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
	}, h.clock.Sleeps())
}

func TestImportFolderNotFound(t *testing.T) {
	h := setup(t, config.Default(), &fakeSource{})

	report := h.session.Import(context.Background(), []string{"https://quizlet.com/user/folders/none"}, "")
	require.Len(t, report.Results, 1)
	require.Equal(t, Failed, report.Results[0].Outcome)
	require.True(t, quizlet.IsParseError(report.Results[0].Err, quizlet.NotFound))
}

func TestImportCancelled(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	source := &fakeSource{
		decks: map[string]quizlet.Deck{
			"1": deck("1", "One", quizlet.Term{Word: "a", Definition: "b"}),
			"2": deck("2", "Two", quizlet.Term{Word: "a", Definition: "b"}),
		},
		block: block,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := setup(t, config.Default(), source)
	h.session.onStatus = func(status string) {
		h.statuses = append(h.statuses, status)
		if status == statusConnecting {
			cancel()
		}
	}

	report := h.session.Import(ctx, []string{
		"https://quizlet.com/1/one",
		"https://quizlet.com/2/two",
	}, "")

	require.Len(t, report.Results, 2)
	require.Equal(t, 2, report.Count(Cancelled))
	require.Equal(t, statusCancelled, report.Results[0].Status)

	decks, err := h.collection.Decks(context.Background())
	require.NoError(t, err)
	require.Empty(t, decks)
}

func TestImportMediaFailure(t *testing.T) {
	source := &fakeSource{
		decks: map[string]quizlet.Deck{
			"8": deck("8", "Pictures", quizlet.Term{
				Word:       "cat",
				Definition: "gato",
				ImageURL:   "https://o.quizlet.com/missing.png",
			}),
		},
	}
	h := setup(t, config.Default(), source)

	report := h.session.Import(context.Background(), []string{"https://quizlet.com/8"}, "")
	res := report.Results[0]
	require.Equal(t, Imported, res.Outcome)
	require.Equal(t, 1, res.MediaFailed)

	notes, err := h.collection.Notes(context.Background(), "Pictures")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Empty(t, notes[0].Fields[collection.FieldImage])
	require.Equal(t, "cat", notes[0].Fields[collection.FieldFront])
}

func TestTextField(t *testing.T) {
	source := &fakeSource{}

	cases := []struct {
		name  string
		rich  bool
		plain string
		node  richtext.Node
		out   string
	}{
		{
			name:  "plain",
			rich:  true,
			plain: "*one*\ntwo",
			out:   "<b>one</b><br>two",
		},
		{
			name:  "unsafe markup",
			rich:  true,
			plain: `<img src=x onerror=alert(1)>hi <b>there</b>`,
			out:   "hi <b>there</b>",
		},
		{
			name:  "rich text disabled",
			rich:  false,
			plain: "word",
			node:  &richtext.Text{Text: "word", Marks: []richtext.Mark{{Kind: richtext.Italic}}},
			out:   "word",
		},
		{
			name:  "rich text",
			rich:  true,
			plain: "word",
			node:  &richtext.Text{Text: "word", Marks: []richtext.Mark{{Kind: richtext.Italic}, {Kind: richtext.Underline}}},
			out:   "<u><i>word</i></u>",
		},
		{
			name:  "paragraph break",
			rich:  true,
			plain: "a\n\nb",
			node: &richtext.Fragment{Children: []richtext.Node{
				&richtext.Paragraph{Children: []richtext.Node{&richtext.Text{Text: "a"}}},
				&richtext.Paragraph{Children: []richtext.Node{nil}},
				&richtext.Paragraph{Children: []richtext.Node{&richtext.Text{Text: "b"}}},
			}},
			out: "<div>a</div><div><br></div><div>b</div>",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.RichTextFormatting = c.rich
			h := setup(t, cfg, source)
			require.Equal(t, c.out, h.session.textField(c.plain, c.node))
		})
	}
}

func TestTextFieldHighlight(t *testing.T) {
	h := setup(t, config.Default(), &fakeSource{})

	node := &richtext.Text{Text: "hi", Marks: []richtext.Mark{
		{Kind: richtext.Highlight, Attrs: map[string]string{"class": "bgY"}},
	}}
	out := h.session.textField("hi", node)
	require.Contains(t, out, `class="bgY"`)
	require.Contains(t, out, `style="background-color: light-dark(#fff4e5, #8c7620);"`)
	require.Contains(t, out, ">hi</span>")
}
