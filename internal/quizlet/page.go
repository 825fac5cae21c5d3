package quizlet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"quizlet-importer/lib/htmlutil"
	"quizlet-importer/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const pageDataSelector = `script#__NEXT_DATA__[type="application/json"]`

// ExtractPageData returns the json state embedded into a quizlet page.
func ExtractPageData(body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Kind: NotFound, Detail: "read html", Err: err}
	}
	text, ok := htmlutil.FirstText(doc, pageDataSelector)
	if !ok {
		return nil, &ParseError{Kind: NotFound, Detail: "no embedded page data"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Kind: NotFound, Detail: "embedded page data is empty"}
	}
	return []byte(text), nil
}

type nextData struct {
	Props struct {
		PageProps struct {
			DehydratedReduxStateKey *string `json:"dehydratedReduxStateKey"`
			Models                  *struct {
				Folder              []Folder              `json:"folder"`
				Set                 []Set                 `json:"set"`
				FolderStudyMaterial []FolderStudyMaterial `json:"folderStudyMaterial"`
			} `json:"models"`
		} `json:"pageProps"`
	} `json:"props"`
}

type titled struct {
	Title string `json:"title"`
}

type pagingMeta struct {
	Total   int    `json:"total"`
	PerPage int    `json:"perPage"`
	Token   string `json:"token"`
}

type reduxState struct {
	Set       *titled `json:"set"`
	Studyable *titled `json:"studyable"`
	SetPage   *struct {
		PagingMeta *pagingMeta `json:"pagingMeta"`
	} `json:"setPage"`
	StudyModesCommon *struct {
		StudiableData *struct {
			StudiableItems []StudiableItem `json:"studiableItems"`
		} `json:"studiableData"`
	} `json:"studyModesCommon"`
}

func (s reduxState) items() []StudiableItem {
	if s.StudyModesCommon == nil || s.StudyModesCommon.StudiableData == nil {
		return nil
	}
	return s.StudyModesCommon.StudiableData.StudiableItems
}

func (s reduxState) paging() *pagingMeta {
	if s.SetPage == nil {
		return nil
	}
	return s.SetPage.PagingMeta
}

func (s reduxState) title() string {
	if s.Set != nil && s.Set.Title != "" {
		return s.Set.Title
	}
	if s.Studyable != nil && s.Studyable.Title != "" {
		return s.Studyable.Title
	}
	return ""
}

// ParseResponse classifies a fetched quizlet page into a folder, a deck whose
// terms are all inline, or a deck whose terms must be paged in. deckID is
// only used for the metadata of deck pages.
func ParseResponse(page RawPage, deckID string) (Response, error) {
	blob, err := ExtractPageData(page.Body)
	if err != nil {
		return nil, err
	}

	var data nextData
	err = json.Unmarshal(blob, &data)
	if err != nil {
		return nil, &ParseError{Kind: InvalidJSON, Detail: "page data", Err: err}
	}
	props := data.Props.PageProps

	if props.Models != nil && props.Models.Folder != nil {
		if len(props.Models.Folder) != 1 {
			return nil, &ParseError{
				Kind:   UnexpectedFolderCount,
				Detail: fmt.Sprintf("expected 1 folder, got %d", len(props.Models.Folder)),
			}
		}
		return &FolderResponse{
			Folder:         props.Models.Folder[0],
			Sets:           props.Models.Set,
			StudyMaterials: props.Models.FolderStudyMaterial,
		}, nil
	}

	if props.DehydratedReduxStateKey == nil {
		return nil, &ParseError{Kind: NotFound, Detail: "no deck state in page data"}
	}
	var state reduxState
	err = json.Unmarshal([]byte(*props.DehydratedReduxStateKey), &state)
	if err != nil {
		return nil, &ParseError{Kind: InvalidJSON, Detail: "deck state", Err: err}
	}

	meta := DeckMetadata{
		ID:    deckID,
		Title: state.title(),
	}
	if meta.Title == "" {
		meta.Title = ExtractTitle(page.Body, page.URL)
	}

	paging := state.paging()
	items := state.items()
	switch {
	case paging != nil && paging.Total > paging.PerPage:
		meta.PagingToken = paging.Token
		meta.TotalCount = paging.Total
		meta.PerPage = paging.PerPage
		return &PaginatedResponse{Metadata: meta}, nil
	case items != nil:
		meta.TotalCount = len(items)
		meta.PerPage = len(items)
		return &SinglePageResponse{Metadata: meta, Items: items}, nil
	case paging != nil:
		meta.PagingToken = paging.Token
		meta.TotalCount = paging.Total
		meta.PerPage = paging.PerPage
		return &PaginatedResponse{Metadata: meta}, nil
	}
	return nil, &ParseError{Kind: NotFound, Detail: "no terms in deck state"}
}

const defaultTitle = "Quizlet Flashcards"

// ExtractTitle derives a deck title from the page's <title>, falling back to
// the last path segment of fallbackURL and then to a fixed name.
func ExtractTitle(body []byte, fallbackURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		text, ok := htmlutil.FirstText(doc, "title")
		if ok {
			title := textutil.TrimAffixes(
				strings.TrimSpace(text),
				[]string{" Flashcards | Quizlet", " | Quizlet"},
				[]string{"Flashcards "},
			)
			title = textutil.CollapseWhitespace(title)
			if title != "" {
				return title
			}
		}
	}
	return fallbackTitle(fallbackURL)
}

func fallbackTitle(rawURL string) string {
	p := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(p)
	if err == nil {
		p = parsed.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" || base == "" {
		return defaultTitle
	}
	return base
}
