package collection

import (
	"slices"

	"quizlet-importer/internal/richtext"
)

const NoteTypeName = "Basic Quizlet"

const (
	FieldFront      = "Front"
	FieldBack       = "Back"
	FieldImage      = "Image"
	FieldAddReverse = "Add Reverse"
	FieldFrontAudio = "Front Audio"
	FieldBackAudio  = "Back Audio"
)

type Template struct {
	Name string `json:"name"`
	Qfmt string `json:"qfmt"`
	Afmt string `json:"afmt"`
	// a card is only generated from this template when the field is not
	// empty, an empty Requires means always
	Requires string `json:"requires,omitempty"`
}

type NoteType struct {
	ID        int64
	Name      string
	Fields    []string
	Templates []Template
	CSS       string
}

func (n NoteType) HasFields(names ...string) bool {
	for _, name := range names {
		if !slices.Contains(n.Fields, name) {
			return false
		}
	}
	return true
}

// Suffices reports whether notes imported with (or without) audio fit into n.
func (n NoteType) Suffices(withAudio bool) bool {
	if !n.HasFields(FieldFront, FieldBack, FieldImage) {
		return false
	}
	if withAudio {
		return n.HasFields(FieldFrontAudio, FieldBackAudio)
	}
	return true
}

const baseCSS = `.card {
    font-family: arial;
    font-size: 20px;
    line-height: 1.5;
    text-align: center;
    color: black;
    background-color: white;
}

img {
    margin-top: 1em;
}
`

const audioCSS = `
.replay-button {
    margin-top: 0.5em;
}
`

// NewNoteType describes the managed note type, it has not been saved yet.
func NewNoteType(withAudio bool) NoteType {
	nt := NoteType{
		Name:   NoteTypeName,
		Fields: []string{FieldFront, FieldBack, FieldImage, FieldAddReverse},
		CSS:    baseCSS + richtext.NoteCSS,
	}

	forward := Template{Name: "Forward"}
	reverse := Template{Name: "Reverse", Requires: FieldAddReverse}
	if !withAudio {
		forward.Qfmt = "{{Front}}"
		forward.Afmt = "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}\n\n<div>{{Image}}</div>"
		reverse.Qfmt = "{{#Add Reverse}}\n\n{{Back}}\n\n<div>{{Image}}</div>\n\n{{/Add Reverse}}"
		reverse.Afmt = "{{FrontSide}}\n\n<hr id=answer>\n\n{{Front}}"
	} else {
		nt.Fields = append(nt.Fields, FieldFrontAudio, FieldBackAudio)
		nt.CSS += audioCSS

		forward.Qfmt = "{{Front}}\n\n{{#Front Audio}}\n<div>{{Front Audio}}</div>\n{{/Front Audio}}"
		forward.Afmt = "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}\n\n{{#Back Audio}}<div>{{Back Audio}}</div>{{/Back Audio}}\n\n<div>{{Image}}</div>"
		reverse.Qfmt = "{{#Add Reverse}}\n\n{{Back}}\n\n{{#Back Audio}}<div>{{Back Audio}}</div>{{/Back Audio}}\n\n<div>{{Image}}</div>\n\n{{/Add Reverse}}"
		reverse.Afmt = "{{FrontSide}}\n\n<hr id=answer>\n\n{{Front}}\n\n{{#Front Audio}}\n<div>{{Front Audio}}</div>\n{{/Front Audio}}"
	}
	nt.Templates = []Template{forward, reverse}
	return nt
}
