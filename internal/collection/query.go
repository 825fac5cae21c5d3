package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type DeckSummary struct {
	ID    int64
	Name  string
	Cards int64
}

// Decks lists every deck with the number of cards directly inside it.
func (c *Collection) Decks(ctx context.Context) ([]DeckSummary, error) {
	decks, err := c.qry.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DeckSummary, 0, len(decks))
	for _, deck := range decks {
		count, err := c.qry.CountCardsInDeck(ctx, deck.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, DeckSummary{ID: deck.ID, Name: deck.Name, Cards: count})
	}
	return out, nil
}

type StoredNote struct {
	ID         int64
	NoteTypeID int64
	Fields     map[string]string
}

// Notes lists the notes of the deck with the given full name, in the order
// they were added. A deck that does not exist has no notes.
func (c *Collection) Notes(ctx context.Context, deckName string) ([]StoredNote, error) {
	deck, err := c.qry.GetDeckByName(ctx, deckName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.qry.ListNotesInDeck(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	out := make([]StoredNote, 0, len(rows))
	for _, row := range rows {
		note := StoredNote{ID: row.ID, NoteTypeID: row.NoteTypeID}
		err = json.Unmarshal([]byte(row.Fields), &note.Fields)
		if err != nil {
			return nil, fmt.Errorf("decode fields of note %d: %w", row.ID, err)
		}
		out = append(out, note)
	}
	return out, nil
}

// NoteType returns the current managed note type, if there is one.
func (c *Collection) NoteType(ctx context.Context) (NoteType, bool, error) {
	row, err := c.qry.GetNoteTypeByName(ctx, NoteTypeName)
	if errors.Is(err, sql.ErrNoRows) {
		return NoteType{}, false, nil
	}
	if err != nil {
		return NoteType{}, false, err
	}
	nt, err := decodeNoteType(row)
	if err != nil {
		return NoteType{}, false, err
	}
	return nt, true, nil
}
