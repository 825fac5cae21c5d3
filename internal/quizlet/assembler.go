package quizlet

import (
	"context"
	"fmt"

	"quizlet-importer/internal/components/assert"
	"quizlet-importer/internal/components/telemetry"
)

const (
	report_assembler_assemble       = "assembler.assemble"
	report_assembler_folder_members = "assembler.folder-members"
)

// ItemsPerPage is how many items are requested from the paging api at once.
const ItemsPerPage = 100

type PageRequest struct {
	DeckID  string
	Token   string
	Page    int
	PerPage int
}

// PageFetcher retrieves one page of a paginated deck.
//
// note: fault injection point
type PageFetcher interface {
	FetchItems(ctx context.Context, req PageRequest) ([]StudiableItem, error)
}

type Assembler struct {
	tel telemetry.API
}

func NewAssembler(tel telemetry.API) Assembler {
	assert.NotNil(tel)
	return Assembler{tel: tel}
}

// Assemble builds the full deck for a deck response. Paginated decks are
// fetched page by page starting at 1 until TotalCount items have been seen,
// any failure discards the pages collected so far.
func (a Assembler) Assemble(ctx context.Context, resp DeckResponse, fetcher PageFetcher) (Deck, error) {
	var items []StudiableItem

	switch resp := resp.(type) {
	case *SinglePageResponse:
		items = resp.Items
	case *PaginatedResponse:
		meta := resp.Metadata
		for page := 1; ; page++ {
			err := ctx.Err()
			if err != nil {
				return Deck{}, err
			}

			pageItems, err := fetcher.FetchItems(ctx, PageRequest{
				DeckID:  meta.ID,
				Token:   meta.PagingToken,
				Page:    page,
				PerPage: ItemsPerPage,
			})
			if err != nil {
				return Deck{}, fmt.Errorf("fetch page %d: %w", page, err)
			}
			if len(pageItems) == 0 && len(items) < meta.TotalCount {
				return Deck{}, &ParseError{
					Kind: NotFound,
					Detail: fmt.Sprintf(
						"page %d was empty with %d of %d items fetched",
						page, len(items), meta.TotalCount,
					),
				}
			}
			items = append(items, pageItems...)
			if len(items) >= meta.TotalCount {
				break
			}
		}
	default:
		panic(fmt.Sprintf("unknown deck response %T", resp))
	}

	terms, skipped, err := NormalizeItems(items)
	if err != nil {
		return Deck{}, err
	}
	if skipped > 0 {
		a.tel.ReportWarning(
			report_assembler_assemble,
			fmt.Errorf("skipped %d items with neither word nor definition", skipped),
			resp.Meta().ID,
		)
	}

	return Deck{Metadata: resp.Meta(), Terms: terms}, nil
}

// FolderMembers lists the decks of a folder in folder order. Every member goes
// under parentDeck, or under the folder's own name when parentDeck is empty.
func (a Assembler) FolderMembers(folder *FolderResponse, parentDeck string) []FolderMember {
	deckName := parentDeck
	if deckName == "" {
		deckName = folder.Folder.Name
	}

	sets := make(map[int64]Set, len(folder.Sets))
	for _, set := range folder.Sets {
		sets[set.ID] = set
	}

	members := make([]FolderMember, 0, len(folder.StudyMaterials))
	for _, material := range folder.StudyMaterials {
		set, ok := sets[material.SetID]
		if !ok {
			a.tel.ReportWarning(
				report_assembler_folder_members,
				fmt.Errorf("study material refers to unknown set %d", material.SetID),
				folder.Folder.ID,
			)
			continue
		}
		members = append(members, FolderMember{
			URL:      set.WebURL,
			DeckName: deckName,
		})
	}
	return members
}
