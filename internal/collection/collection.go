// Package collection is the flashcard collection imported decks are written
// into: decks, the managed note type, notes with their cards, and a media
// directory.
package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"quizlet-importer/internal/components/assert"
	"quizlet-importer/internal/components/chrono"
	"quizlet-importer/internal/components/telemetry"
	"quizlet-importer/internal/db"
	"quizlet-importer/lib/sqliteutil"

	"github.com/mazen160/go-random"
)

const (
	report_tx_ensure_deck      = "tx.ensure-deck"
	report_tx_ensure_note_type = "tx.ensure-note-type"
	report_tx_add_note         = "tx.add-note"
	report_tx_write_media      = "tx.write-media"
	report_tx_rollback         = "tx.rollback"
)

// DeckSeparator separates the levels of a nested deck name.
const DeckSeparator = "::"

type Config struct {
	DB sqliteutil.Config
	// defaults to "<db file>.media", required when the database is remote
	MediaDir string
}

type Collection struct {
	db       *sql.DB
	qry      *db.Queries
	makeTx   db.MakeTx
	mediaDir string
	time     chrono.API
	tel      telemetry.API
}

// Open opens (creating if needed) the collection described by config.
func Open(config Config, time chrono.API, tel telemetry.API) (*Collection, error) {
	mediaDir := config.MediaDir
	if mediaDir == "" {
		if config.DB.File == "" || config.DB.File == ":memory:" {
			return nil, fmt.Errorf("open collection: a media directory must be given for this database")
		}
		mediaDir = config.DB.File + ".media"
	}

	database, err := sqliteutil.OpenDB(db.Schema, config.DB)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	c, err := New(database, mediaDir, time, tel)
	if err != nil {
		database.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an already open database that has db.Schema applied.
func New(database *sql.DB, mediaDir string, time chrono.API, tel telemetry.API) (*Collection, error) {
	assert.NotNil(database)
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.NotEmptyStr(mediaDir)

	err := os.MkdirAll(mediaDir, 0777)
	if err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	return &Collection{
		db:       database,
		qry:      db.New(database),
		makeTx:   db.NewMakeTx(database),
		mediaDir: mediaDir,
		time:     time,
		tel:      telemetry.NewScopedAPI("collection", tel),
	}, nil
}

func (c *Collection) Close() error {
	return c.db.Close()
}

func (c *Collection) MediaDir() string {
	return c.mediaDir
}

// Tx groups every write of a single import, nothing is visible until Commit
// and Rollback also removes media files written through it.
//
// The database only has one connection, so no other Collection method may be
// used while a Tx is open.
type Tx struct {
	qry     *db.Queries
	discard func() error
	commit  func() error
	done    bool
	written []string
	c       *Collection
}

func (c *Collection) Begin(ctx context.Context) (*Tx, error) {
	qry, discard, commit, err := c.makeTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{
		qry:     qry,
		discard: discard,
		commit:  commit,
		c:       c,
	}, nil
}

func (tx *Tx) Commit() error {
	if tx.done {
		return fmt.Errorf("transaction already finished")
	}
	tx.done = true
	return tx.commit()
}

// Rollback discards the transaction, it is a no-op after Commit so it can
// always be deferred.
func (tx *Tx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true

	var errlist []error
	// a cancelled context already rolled back the sql transaction
	err := tx.discard()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		errlist = append(errlist, err)
	}
	for _, name := range tx.written {
		err := os.Remove(tx.c.mediaPath(name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errlist = append(errlist, err)
		}
	}
	err = errors.Join(errlist...)
	if err != nil {
		tx.c.tel.ReportBroken(report_tx_rollback, err)
	}
	return err
}

// EnsureDeck returns the id of the deck with the given "::" separated name,
// creating it and any missing parents.
func (tx *Tx) EnsureDeck(ctx context.Context, name string) (int64, error) {
	var parts []string
	for _, part := range strings.Split(name, DeckSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return 0, fmt.Errorf("empty deck name %q", name)
	}

	var parent sql.NullInt64
	for i := range parts {
		path := strings.Join(parts[:i+1], DeckSeparator)

		deck, err := tx.qry.GetDeckByName(ctx, path)
		if err == nil {
			parent = sql.NullInt64{Int64: deck.ID, Valid: true}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			tx.c.tel.ReportBroken(report_tx_ensure_deck, fmt.Errorf("get deck: %w", err), path)
			return 0, err
		}

		id, err := tx.qry.CreateDeck(ctx, db.CreateDeckParams{
			Name:      path,
			ParentID:  parent,
			CreatedAt: tx.c.time.Now().Unix(),
		})
		if err != nil {
			tx.c.tel.ReportBroken(report_tx_ensure_deck, fmt.Errorf("create deck: %w", err), path)
			return 0, err
		}
		parent = sql.NullInt64{Int64: id, Valid: true}
	}
	return parent.Int64, nil
}

func decodeNoteType(row db.NoteType) (NoteType, error) {
	nt := NoteType{ID: row.ID, Name: row.Name, CSS: row.Css}
	err := json.Unmarshal([]byte(row.Fields), &nt.Fields)
	if err != nil {
		return NoteType{}, fmt.Errorf("decode fields of note type %d: %w", row.ID, err)
	}
	err = json.Unmarshal([]byte(row.Templates), &nt.Templates)
	if err != nil {
		return NoteType{}, fmt.Errorf("decode templates of note type %d: %w", row.ID, err)
	}
	return nt, nil
}

// EnsureNoteType returns the managed note type. An existing one is reused if
// it has every field needed, otherwise it is renamed out of the way (so the
// notes already using it keep working) and a fresh one is created.
func (tx *Tx) EnsureNoteType(ctx context.Context, withAudio bool) (NoteType, error) {
	row, err := tx.qry.GetNoteTypeByName(ctx, NoteTypeName)
	switch {
	case err == nil:
		existing, err := decodeNoteType(row)
		if err != nil {
			tx.c.tel.ReportBroken(report_tx_ensure_note_type, err)
			return NoteType{}, err
		}
		if existing.Suffices(withAudio) {
			return existing, nil
		}

		suffix, err := random.String(5)
		if err != nil {
			return NoteType{}, err
		}
		renamed := fmt.Sprintf("%s-%s", existing.Name, suffix)
		err = tx.qry.RenameNoteType(ctx, db.RenameNoteTypeParams{
			Name: renamed,
			ID:   existing.ID,
		})
		if err != nil {
			tx.c.tel.ReportBroken(report_tx_ensure_note_type, fmt.Errorf("rename: %w", err))
			return NoteType{}, err
		}
		tx.c.tel.ReportWarning(
			report_tx_ensure_note_type,
			fmt.Errorf("existing note type lacks needed fields, renamed it to %q", renamed),
		)
	case errors.Is(err, sql.ErrNoRows):
	default:
		tx.c.tel.ReportBroken(report_tx_ensure_note_type, fmt.Errorf("get: %w", err))
		return NoteType{}, err
	}

	nt := NewNoteType(withAudio)
	fields, err := json.Marshal(nt.Fields)
	if err != nil {
		return NoteType{}, err
	}
	templates, err := json.Marshal(nt.Templates)
	if err != nil {
		return NoteType{}, err
	}
	nt.ID, err = tx.qry.CreateNoteType(ctx, db.CreateNoteTypeParams{
		Name:      nt.Name,
		Fields:    string(fields),
		Templates: string(templates),
		Css:       nt.CSS,
		CreatedAt: tx.c.time.Now().Unix(),
	})
	if err != nil {
		tx.c.tel.ReportBroken(report_tx_ensure_note_type, fmt.Errorf("create: %w", err))
		return NoteType{}, err
	}
	return nt, nil
}

// SetDefaultDeck makes deckID the deck new notes of the note type go to.
func (tx *Tx) SetDefaultDeck(ctx context.Context, noteTypeID, deckID int64) error {
	return tx.qry.SetNoteTypeDeck(ctx, db.SetNoteTypeDeckParams{
		DeckID: sql.NullInt64{Int64: deckID, Valid: true},
		ID:     noteTypeID,
	})
}

type Note struct {
	DeckID   int64
	NoteType NoteType
	// field name -> html, fields left out are empty
	Fields map[string]string
}

// AddNote stores a note and generates its cards, one per template whose
// required field is filled in.
func (tx *Tx) AddNote(ctx context.Context, note Note) (int64, error) {
	for name := range note.Fields {
		if !note.NoteType.HasFields(name) {
			return 0, fmt.Errorf("note type %q has no field %q", note.NoteType.Name, name)
		}
	}

	fields, err := json.Marshal(note.Fields)
	if err != nil {
		return 0, err
	}
	guid, err := random.String(10)
	if err != nil {
		return 0, err
	}

	id, err := tx.qry.CreateNote(ctx, db.CreateNoteParams{
		Guid:       guid,
		NoteTypeID: note.NoteType.ID,
		DeckID:     note.DeckID,
		Fields:     string(fields),
		CreatedAt:  tx.c.time.Now().Unix(),
	})
	if err != nil {
		tx.c.tel.ReportBroken(report_tx_add_note, fmt.Errorf("create note: %w", err))
		return 0, err
	}

	for ord, tmpl := range note.NoteType.Templates {
		if tmpl.Requires != "" && note.Fields[tmpl.Requires] == "" {
			continue
		}
		err = tx.qry.CreateCard(ctx, db.CreateCardParams{
			NoteID: id,
			DeckID: note.DeckID,
			Ord:    int64(ord),
		})
		if err != nil {
			tx.c.tel.ReportBroken(report_tx_add_note, fmt.Errorf("create card: %w", err))
			return 0, err
		}
	}
	return id, nil
}
