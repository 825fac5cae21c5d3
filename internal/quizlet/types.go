package quizlet

import (
	"encoding/json"
	"net/http"

	"quizlet-importer/internal/richtext"
)

// RawPage is a single fetched response.
type RawPage struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

// DeckMetadata describes a deck before its terms are assembled. An empty
// PagingToken means every term came with the page itself.
type DeckMetadata struct {
	ID          string
	Title       string
	PagingToken string
	TotalCount  int
	PerPage     int
}

type Term struct {
	Word       string
	Definition string
	// nil when the side had no rich text, renderers fall back to the plain
	// text.
	WordRichText       richtext.Node
	DefinitionRichText richtext.Node
	WordAudioURL       string
	DefinitionAudioURL string
	ImageURL           string
}

type Deck struct {
	Metadata DeckMetadata
	Terms    []Term
}

type FolderMember struct {
	URL      string
	DeckName string
}

const (
	MediaText  = 1
	MediaImage = 2
)

type Media struct {
	Type      int             `json:"type"`
	PlainText *string         `json:"plainText"`
	TtsURL    string          `json:"ttsUrl"`
	RichText  json.RawMessage `json:"richText"`
	URL       string          `json:"url"`
}

type CardSide struct {
	Label string  `json:"label"`
	Media []Media `json:"media"`
}

// StudiableItem is a single card as quizlet stores it.
type StudiableItem struct {
	ID        int64      `json:"id"`
	CardSides []CardSide `json:"cardSides"`
	// Photo is the legacy `type,a,b,...` image reference.
	Photo string `json:"photo"`
}

type Folder struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Set struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	WebURL string `json:"_webUrl"`
}

type FolderStudyMaterial struct {
	SetID int64 `json:"setId"`
}

// Response is one of *FolderResponse, *SinglePageResponse or
// *PaginatedResponse.
type Response interface {
	response()
}

// DeckResponse is a Response that describes a single deck.
type DeckResponse interface {
	Response
	Meta() DeckMetadata
}

type FolderResponse struct {
	Folder         Folder
	Sets           []Set
	StudyMaterials []FolderStudyMaterial
}

type SinglePageResponse struct {
	Metadata DeckMetadata
	Items    []StudiableItem
}

type PaginatedResponse struct {
	Metadata DeckMetadata
}

func (*FolderResponse) response()     {}
func (*SinglePageResponse) response() {}
func (*PaginatedResponse) response()  {}

func (r *SinglePageResponse) Meta() DeckMetadata { return r.Metadata }
func (r *PaginatedResponse) Meta() DeckMetadata  { return r.Metadata }
