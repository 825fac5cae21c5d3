package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quizlet-importer/internal/quizlet"
)

type Outcome int

const (
	Imported Outcome = iota
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Imported:
		return "imported"
	case Cancelled:
		return "cancelled"
	}
	return "failed"
}

// Result is what happened to a single deck, or to a url that never got as
// far as a deck.
type Result struct {
	URL      string
	DeckID   string
	DeckName string
	Title    string
	Terms    int
	// number of media files that could not be downloaded
	MediaFailed int

	Outcome Outcome
	Status  string
	Err     error
	// the raw failed exchange for errors without a specific message, shown
	// on demand
	Diagnostic string
}

type Report struct {
	Results []Result
}

func (r *Report) add(results ...Result) {
	r.Results = append(r.Results, results...)
}

// Summary is the status line of every result, one per line.
func (r Report) Summary() string {
	lines := make([]string, len(r.Results))
	for i, res := range r.Results {
		lines[i] = res.Status
	}
	return strings.Join(lines, "\n")
}

func (r Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

const (
	statusConnecting = "Connecting to Quizlet..."
	statusCancelled  = "Import cancelled"
)

func statusSuccess(title string, terms int) string {
	return fmt.Sprintf("Success! Imported %s (%d cards)", title, terms)
}

func statusImporting(name string) string {
	return fmt.Sprintf("Importing deck %s...", name)
}

func statusProgress(name string, index, total int) string {
	return fmt.Sprintf("Importing deck %s [%d/%d] ...", name, index, total)
}

// failure turns an error of a deck import into the result shown for it.
func failure(res Result, err error) Result {
	res.Err = err
	res.Outcome = Failed

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		res.Outcome = Cancelled
		res.Status = statusCancelled
		return res
	}

	var verr *quizlet.ValidationError
	if errors.As(err, &verr) {
		switch {
		case verr.Kind == quizlet.MissingDeckId:
			res.Status = fmt.Sprintf("Oops! No deck ID found in path %s :(", strings.TrimSpace(verr.Input))
		case strings.TrimSpace(verr.Input) == "":
			res.Status = "Oops! You forgot the deck URL :("
		default:
			res.Status = "Oops! That's not a Quizlet URL :("
		}
		return res
	}

	var ferr *quizlet.FetchError
	if errors.As(err, &ferr) {
		switch {
		case ferr.Status == http.StatusForbidden && ferr.Captcha:
			res.Status = "Sorry, it's behind a captcha."
			return res
		case ferr.Status == http.StatusForbidden:
			res.Status = "Sorry, this is a private deck :("
			return res
		case ferr.Status == http.StatusNotFound:
			res.Status = fmt.Sprintf("Can't find a deck with the ID %s", res.DeckID)
			return res
		}
		res.Status = "Unknown error"
		res.Diagnostic = ferr.Diagnostic
		return res
	}

	var perr *quizlet.ParseError
	if errors.As(err, &perr) && perr.Kind == quizlet.UnexpectedFolderCount {
		res.Status = "Oops! That folder page did not have exactly one folder :("
		res.Diagnostic = err.Error()
		return res
	}

	res.Status = "Unknown error"
	res.Diagnostic = err.Error()
	return res
}
