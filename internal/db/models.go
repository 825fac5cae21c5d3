package db

import (
	"database/sql"
)

type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int64
}

type Deck struct {
	ID        int64
	Name      string
	ParentID  sql.NullInt64
	CreatedAt int64
}

type Medium struct {
	Name      string
	Checksum  string
	Size      int64
	CreatedAt int64
}

type Note struct {
	ID         int64
	Guid       string
	NoteTypeID int64
	DeckID     int64
	Fields     string
	CreatedAt  int64
}

type NoteType struct {
	ID        int64
	Name      string
	Fields    string
	Templates string
	Css       string
	DeckID    sql.NullInt64
	CreatedAt int64
}
