package db

import (
	"context"
	"database/sql"
)

const countCardsInDeck = `-- name: CountCardsInDeck :one
select count(*) from cards where deck_id = ?
`

func (q *Queries) CountCardsInDeck(ctx context.Context, deckID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCardsInDeck, deckID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createCard = `-- name: CreateCard :exec
insert into cards (note_id, deck_id, ord) values (?, ?, ?)
`

type CreateCardParams struct {
	NoteID int64
	DeckID int64
	Ord    int64
}

func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) error {
	_, err := q.db.ExecContext(ctx, createCard, arg.NoteID, arg.DeckID, arg.Ord)
	return err
}

const createDeck = `-- name: CreateDeck :one
insert into decks (name, parent_id, created_at)
values (?, ?, ?)
returning id
`

type CreateDeckParams struct {
	Name      string
	ParentID  sql.NullInt64
	CreatedAt int64
}

func (q *Queries) CreateDeck(ctx context.Context, arg CreateDeckParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createDeck, arg.Name, arg.ParentID, arg.CreatedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createMedia = `-- name: CreateMedia :exec
insert into media (name, checksum, size, created_at)
values (?, ?, ?, ?)
`

type CreateMediaParams struct {
	Name      string
	Checksum  string
	Size      int64
	CreatedAt int64
}

func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) error {
	_, err := q.db.ExecContext(ctx, createMedia,
		arg.Name,
		arg.Checksum,
		arg.Size,
		arg.CreatedAt,
	)
	return err
}

const createNote = `-- name: CreateNote :one
insert into notes (guid, note_type_id, deck_id, fields, created_at)
values (?, ?, ?, ?, ?)
returning id
`

type CreateNoteParams struct {
	Guid       string
	NoteTypeID int64
	DeckID     int64
	Fields     string
	CreatedAt  int64
}

func (q *Queries) CreateNote(ctx context.Context, arg CreateNoteParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createNote,
		arg.Guid,
		arg.NoteTypeID,
		arg.DeckID,
		arg.Fields,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createNoteType = `-- name: CreateNoteType :one
insert into note_types (name, fields, templates, css, deck_id, created_at)
values (?, ?, ?, ?, ?, ?)
returning id
`

type CreateNoteTypeParams struct {
	Name      string
	Fields    string
	Templates string
	Css       string
	DeckID    sql.NullInt64
	CreatedAt int64
}

func (q *Queries) CreateNoteType(ctx context.Context, arg CreateNoteTypeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createNoteType,
		arg.Name,
		arg.Fields,
		arg.Templates,
		arg.Css,
		arg.DeckID,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getDeckByName = `-- name: GetDeckByName :one
select id, name, parent_id, created_at from decks where name = ?
`

func (q *Queries) GetDeckByName(ctx context.Context, name string) (Deck, error) {
	row := q.db.QueryRowContext(ctx, getDeckByName, name)
	var i Deck
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.ParentID,
		&i.CreatedAt,
	)
	return i, err
}

const getMedia = `-- name: GetMedia :one
select name, checksum, size, created_at from media where name = ?
`

func (q *Queries) GetMedia(ctx context.Context, name string) (Medium, error) {
	row := q.db.QueryRowContext(ctx, getMedia, name)
	var i Medium
	err := row.Scan(
		&i.Name,
		&i.Checksum,
		&i.Size,
		&i.CreatedAt,
	)
	return i, err
}

const getNoteTypeByName = `-- name: GetNoteTypeByName :one
select id, name, fields, templates, css, deck_id, created_at from note_types where name = ?
order by id desc
limit 1
`

func (q *Queries) GetNoteTypeByName(ctx context.Context, name string) (NoteType, error) {
	row := q.db.QueryRowContext(ctx, getNoteTypeByName, name)
	var i NoteType
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Fields,
		&i.Templates,
		&i.Css,
		&i.DeckID,
		&i.CreatedAt,
	)
	return i, err
}

const listDecks = `-- name: ListDecks :many
select id, name, parent_id, created_at from decks order by name
`

func (q *Queries) ListDecks(ctx context.Context) ([]Deck, error) {
	rows, err := q.db.QueryContext(ctx, listDecks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Deck
	for rows.Next() {
		var i Deck
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.ParentID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listNotesInDeck = `-- name: ListNotesInDeck :many
select id, guid, note_type_id, deck_id, fields, created_at from notes where deck_id = ? order by id
`

func (q *Queries) ListNotesInDeck(ctx context.Context, deckID int64) ([]Note, error) {
	rows, err := q.db.QueryContext(ctx, listNotesInDeck, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Note
	for rows.Next() {
		var i Note
		if err := rows.Scan(
			&i.ID,
			&i.Guid,
			&i.NoteTypeID,
			&i.DeckID,
			&i.Fields,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const renameNoteType = `-- name: RenameNoteType :exec
update note_types set name = ? where id = ?
`

type RenameNoteTypeParams struct {
	Name string
	ID   int64
}

func (q *Queries) RenameNoteType(ctx context.Context, arg RenameNoteTypeParams) error {
	_, err := q.db.ExecContext(ctx, renameNoteType, arg.Name, arg.ID)
	return err
}

const setNoteTypeDeck = `-- name: SetNoteTypeDeck :exec
update note_types set deck_id = ? where id = ?
`

type SetNoteTypeDeckParams struct {
	DeckID sql.NullInt64
	ID     int64
}

func (q *Queries) SetNoteTypeDeck(ctx context.Context, arg SetNoteTypeDeckParams) error {
	_, err := q.db.ExecContext(ctx, setNoteTypeDeck, arg.DeckID, arg.ID)
	return err
}
