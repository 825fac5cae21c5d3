package importer

import (
	"context"
	"fmt"
	"time"

	"quizlet-importer/internal/collection"
	"quizlet-importer/internal/components/assert"
	"quizlet-importer/internal/components/chrono"
	"quizlet-importer/internal/components/telemetry"
	"quizlet-importer/internal/config"
	"quizlet-importer/internal/quizlet"
	"quizlet-importer/lib/restyutil"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_session_import_deck   = "session.import-deck"
	report_session_import_folder = "session.import-folder"
)

var tracer = otel.Tracer("quizlet-importer/internal/importer")
var meter = otel.Meter("quizlet-importer/internal/importer")

var decksImported, _ = meter.Int64Counter(
	"quizlet.decks_imported",
	metric.WithDescription("Decks written to the collection."),
)
var termsImported, _ = meter.Int64Counter(
	"quizlet.terms_imported",
	metric.WithDescription("Notes added to the collection."),
)
var mediaFailedCount, _ = meter.Int64Counter(
	"quizlet.media_failed",
	metric.WithDescription("Media files that could not be downloaded, their fields were left empty."),
)

type Options struct {
	Config     config.Config
	Source     Source
	Collection *collection.Collection
	Time       chrono.API
	Tel        telemetry.API
	// receives every progress line, may be nil
	OnStatus func(status string)
	// defaults to DefaultStartPause
	StartPause time.Duration
}

// Session carries everything one run of imports needs. It is not safe for
// concurrent use, imports run one after the other.
type Session struct {
	cfg        config.Config
	source     Source
	collection *collection.Collection
	scheduler  *Scheduler
	media      *mediaDownloader
	policy     *bluemonday.Policy
	onStatus   func(string)
	tel        telemetry.API
}

func NewSession(opts Options) *Session {
	assert.NotNil(opts.Source)
	assert.NotNil(opts.Collection)
	assert.NotNil(opts.Time)
	assert.NotNil(opts.Tel)

	tel := telemetry.NewScopedAPI("importer", opts.Tel)

	startPause := opts.StartPause
	if startPause == 0 {
		startPause = DefaultStartPause
	}
	onStatus := opts.OnStatus
	if onStatus == nil {
		onStatus = func(string) {}
	}

	return &Session{
		cfg:        opts.Config,
		source:     opts.Source,
		collection: opts.Collection,
		scheduler:  NewScheduler(opts.Time, startPause, opts.Config.Pause),
		media:      newMediaDownloader(opts.Source, tel),
		policy:     newFieldPolicy(),
		onStatus:   onStatus,
		tel:        tel,
	}
}

// OpenSession wires a session to quizlet.com and the collection named in cfg.
// The caller owns the session and must Close it.
func OpenSession(cfg config.Config, onStatus func(string), tel telemetry.API) (*Session, error) {
	var dump restyutil.Output
	if cfg.DumpDir != "" {
		out, err := restyutil.NewFilesystemOutput(cfg.DumpDir)
		if err != nil {
			return nil, err
		}
		dump = out
	}

	client, err := quizlet.NewClient(quizlet.ClientOptions{
		Qlts:              cfg.Qlts,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Dump:              dump,
	}, tel)
	if err != nil {
		return nil, err
	}

	clock := chrono.NewStandardImpl()
	coll, err := collection.Open(collection.Config{
		DB:       cfg.Collection,
		MediaDir: cfg.MediaDir,
	}, clock, tel)
	if err != nil {
		return nil, err
	}

	return NewSession(Options{
		Config:     cfg,
		Source:     client,
		Collection: coll,
		Time:       clock,
		Tel:        tel,
		OnStatus:   onStatus,
	}), nil
}

func (s *Session) Close() error {
	return s.collection.Close()
}

func (s *Session) Collection() *collection.Collection {
	return s.collection
}

func (s *Session) status(line string) {
	s.tel.ReportDebug("status", line)
	s.onStatus(line)
}

// Import imports every url in order. Problems with one url never stop the
// others, only cancellation of ctx does.
func (s *Session) Import(ctx context.Context, urls []string, parentDeck string) Report {
	var report Report
	if len(urls) == 0 {
		return report
	}
	s.status(fmt.Sprintf("There are %d urls in total. Starting", len(urls)))

	for _, raw := range urls {
		if ctx.Err() != nil {
			report.add(failure(Result{URL: raw}, ctx.Err()))
			break
		}

		input, err := quizlet.ParseInput(raw)
		if err != nil {
			res := failure(Result{URL: raw}, err)
			s.status(res.Status)
			report.add(res)
			continue
		}

		switch input.Kind {
		case quizlet.FolderInput:
			report.add(s.importFolder(ctx, input.URL, parentDeck)...)
		default:
			report.add(s.scheduled(ctx, input.URL, input.DeckID, parentDeck))
		}
	}

	if len(report.Results) > 1 {
		s.status(report.Summary())
	}
	return report
}

// scheduled waits for the scheduler before importing a deck.
func (s *Session) scheduled(ctx context.Context, deckUrl, deckID, parentDeck string) Result {
	res := Result{URL: deckUrl, DeckID: deckID}
	err := s.scheduler.Next(ctx)
	if err != nil {
		return failure(res, err)
	}
	return s.importDeck(ctx, deckUrl, deckID, parentDeck)
}

func (s *Session) importFolder(ctx context.Context, folderUrl, parentDeck string) []Result {
	ctx, span := tracer.Start(ctx, "import-folder", trace.WithAttributes(
		attribute.String("url", folderUrl),
	))
	defer span.End()

	err := s.scheduler.Next(ctx)
	if err != nil {
		return []Result{failure(Result{URL: folderUrl}, err)}
	}

	s.status(statusConnecting)
	members, err := s.source.Folder(ctx, folderUrl, parentDeck)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportWarning(report_session_import_folder, err, folderUrl)
		res := failure(Result{URL: folderUrl}, err)
		s.status(res.Status)
		return []Result{res}
	}
	if len(members) == 0 {
		res := Result{URL: folderUrl, Outcome: Failed, Status: "This folder has no decks"}
		s.status(res.Status)
		return []Result{res}
	}

	var results []Result
	for _, member := range members {
		if ctx.Err() != nil {
			results = append(results, failure(Result{URL: member.URL}, ctx.Err()))
			break
		}
		deckID, err := quizlet.DeckIDFromPath(member.URL)
		if err != nil {
			results = append(results, failure(Result{URL: member.URL}, err))
			continue
		}
		results = append(results, s.scheduled(ctx, member.URL, deckID, member.DeckName))
	}
	return results
}

func (s *Session) importDeck(ctx context.Context, deckUrl, deckID, parentDeck string) Result {
	ctx, span := tracer.Start(ctx, "import-deck", trace.WithAttributes(
		attribute.String("deck_id", deckID),
	))
	defer span.End()

	res := Result{URL: deckUrl, DeckID: deckID}
	fail := func(err error) Result {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res = failure(res, err)
		if res.Outcome == Failed {
			s.tel.ReportWarning(report_session_import_deck, err, deckID)
		}
		s.status(res.Status)
		return res
	}

	s.status(statusConnecting)
	deck, err := s.fetchDeck(ctx, deckID)
	if err != nil {
		return fail(err)
	}

	res.Title = deck.Metadata.Title
	res.DeckName = deck.Metadata.Title
	if parentDeck != "" {
		res.DeckName = parentDeck + collection.DeckSeparator + deck.Metadata.Title
	}
	span.SetAttributes(attribute.String("deck_name", res.DeckName))

	s.status(statusImporting(deck.Metadata.Title))
	mediaFailed, err := s.writeDeck(ctx, res.DeckName, deck)
	res.MediaFailed = mediaFailed
	if err != nil {
		return fail(err)
	}

	res.Terms = len(deck.Terms)
	res.Outcome = Imported
	res.Status = statusSuccess(deck.Metadata.Title, len(deck.Terms))

	decksImported.Add(ctx, 1)
	termsImported.Add(ctx, int64(len(deck.Terms)))
	if mediaFailed > 0 {
		mediaFailedCount.Add(ctx, int64(mediaFailed))
		s.tel.ReportWarning(report_session_import_deck, fmt.Errorf("%d media files could not be downloaded", mediaFailed), deckID)
	}
	s.tel.ReportCount("terms", int64(len(deck.Terms)))

	s.status(res.Status)
	return res
}

// writeDeck adds one note per term under deckName, all or nothing.
func (s *Session) writeDeck(ctx context.Context, deckName string, deck quizlet.Deck) (mediaFailed int, err error) {
	tx, err := s.collection.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	deckID, err := tx.EnsureDeck(ctx, deckName)
	if err != nil {
		return 0, err
	}
	noteType, err := tx.EnsureNoteType(ctx, s.cfg.AddAudio)
	if err != nil {
		return 0, err
	}
	err = tx.SetDefaultDeck(ctx, noteType.ID, deckID)
	if err != nil {
		return 0, err
	}

	for i, term := range deck.Terms {
		err = ctx.Err()
		if err != nil {
			return mediaFailed, err
		}

		fields, failed := s.noteFields(ctx, tx, term)
		mediaFailed += failed
		_, err = tx.AddNote(ctx, collection.Note{
			DeckID:   deckID,
			NoteType: noteType,
			Fields:   fields,
		})
		if err != nil {
			return mediaFailed, err
		}
		s.status(statusProgress(deckName, i+1, len(deck.Terms)))
	}

	return mediaFailed, tx.Commit()
}
