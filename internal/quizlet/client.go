package quizlet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"quizlet-importer/internal/components/assert"
	"quizlet-importer/internal/components/telemetry"
	"quizlet-importer/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_get         = "client.get"
	report_client_fetch_items = "client.fetch-items"
	report_client_deck        = "client.deck"
	report_client_folder      = "client.folder"
)

const DefaultBaseUrl = "https://quizlet.com"

// CaptchaHeader is present on responses that are a cloudflare challenge
// rather than the requested page.
const CaptchaHeader = "CF-Chl-Bypass"

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// Qlts is the session cookie of a logged in browser, it is needed for
	// private decks and sometimes to get past the captcha.
	Qlts string
	// defaults to 2
	RequestsPerSecond float64
	// defaults to 30 seconds
	Timeout time.Duration
	// if set, every response is written here
	Dump restyutil.Output
}

type Client struct {
	BaseUrl   *url.URL
	Http      *resty.Client
	assembler Assembler
	tel       telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("quizlet", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if opts.Qlts != "" {
		jar.SetCookies(parsedBaseUrl, []*http.Cookie{{
			Name:  "qlts",
			Value: opts.Qlts,
			Path:  "/",
		}})
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	// media lives on other hosts (o.quizlet.com, staticflickr) so redirects
	// can't be pinned to the base domain
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	httpClient.SetTimeout(opts.Timeout)

	// max burst >= rps just means that no requests will be dropped
	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.DumpResponses(httpClient, opts.Dump)

	c := &Client{
		BaseUrl:   parsedBaseUrl,
		Http:      httpClient,
		assembler: NewAssembler(tel),
		tel:       tel,
	}
	return c, nil
}

// Get fetches a url, relative urls are resolved against the base url. Any
// non 2xx response is returned as a *FetchError.
func (c *Client) Get(ctx context.Context, rawUrl string) (RawPage, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(rawUrl)
	if err != nil {
		return RawPage{}, &FetchError{
			URL:        rawUrl,
			Network:    err,
			Diagnostic: err.Error(),
		}
	}

	page := RawPage{
		URL:    res.Request.URL,
		Status: res.StatusCode(),
		Header: res.Header(),
		Body:   res.Body(),
	}
	if !res.IsSuccess() {
		_, captcha := res.Header()[http.CanonicalHeaderKey(CaptchaHeader)]
		ferr := &FetchError{
			URL:        rawUrl,
			Status:     res.StatusCode(),
			Captcha:    captcha,
			Diagnostic: restyutil.FormatHttpMessage(res),
		}
		c.tel.ReportDebug(report_client_get, ferr.Error())
		return page, ferr
	}
	return page, nil
}

type itemsResponse struct {
	Responses []struct {
		Models struct {
			StudiableItem []StudiableItem `json:"studiableItem"`
		} `json:"models"`
	} `json:"responses"`
}

// FetchItems implements PageFetcher against quizlet's internal paging api.
func (c *Client) FetchItems(ctx context.Context, req PageRequest) ([]StudiableItem, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"pagingToken":                     req.Token,
			"page":                            strconv.Itoa(req.Page),
			"perPage":                         strconv.Itoa(req.PerPage),
			"filters[studiableContainerId]":   req.DeckID,
			"filters[studiableContainerType]": "1",
		}).
		Get("/webapi/3.4/studiable-item-documents")
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_items, fmt.Errorf("request: %w", err), req.DeckID, req.Page)
		return nil, &FetchError{
			URL:        "/webapi/3.4/studiable-item-documents",
			Network:    err,
			Diagnostic: err.Error(),
		}
	}
	if !res.IsSuccess() {
		_, captcha := res.Header()[http.CanonicalHeaderKey(CaptchaHeader)]
		return nil, &FetchError{
			URL:        res.Request.URL,
			Status:     res.StatusCode(),
			Captcha:    captcha,
			Diagnostic: restyutil.FormatHttpMessage(res),
		}
	}

	var parsed itemsResponse
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_items, fmt.Errorf("unmarshal: %w", err), req.DeckID, req.Page)
		return nil, &ParseError{Kind: InvalidJSON, Detail: "paging api response", Err: err}
	}

	var items []StudiableItem
	for _, r := range parsed.Responses {
		items = append(items, r.Models.StudiableItem...)
	}
	c.tel.ReportDebug("fetched items", req.DeckID, req.Page, len(items))
	return items, nil
}

// Deck fetches and fully assembles the deck with the given id.
func (c *Client) Deck(ctx context.Context, deckID string) (Deck, error) {
	page, err := c.Get(ctx, FlashcardsPath(deckID))
	if err != nil {
		return Deck{}, err
	}

	resp, err := ParseResponse(page, deckID)
	if err != nil {
		c.tel.ReportWarning(report_client_deck, err, deckID)
		return Deck{}, err
	}
	deckResp, ok := resp.(DeckResponse)
	if !ok {
		return Deck{}, &ParseError{Kind: NotFound, Detail: fmt.Sprintf("%s is not a deck", deckID)}
	}

	deck, err := c.assembler.Assemble(ctx, deckResp, c)
	if err != nil {
		c.tel.ReportWarning(report_client_deck, err, deckID)
		return Deck{}, err
	}
	return deck, nil
}

// Folder fetches a folder page and lists its member decks.
func (c *Client) Folder(ctx context.Context, folderUrl string, parentDeck string) ([]FolderMember, error) {
	page, err := c.Get(ctx, folderUrl)
	if err != nil {
		return nil, err
	}

	resp, err := ParseResponse(page, "")
	if err != nil {
		c.tel.ReportWarning(report_client_folder, err, folderUrl)
		return nil, err
	}
	folder, ok := resp.(*FolderResponse)
	if !ok {
		return nil, &ParseError{Kind: NotFound, Detail: fmt.Sprintf("%s is not a folder", folderUrl)}
	}
	return c.assembler.FolderMembers(folder, parentDeck), nil
}

// Media downloads the file at an absolute url.
func (c *Client) Media(ctx context.Context, mediaUrl string) ([]byte, error) {
	page, err := c.Get(ctx, mediaUrl)
	if err != nil {
		return nil, err
	}
	return page.Body, nil
}
