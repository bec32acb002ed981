// Package pubmed fetches literature references from the NCBI E-utilities
// API to enrich case analyses. Enrichment is best-effort: failures are
// logged and degrade to an empty reference list, never failing the
// surrounding pipeline.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/logging"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	articleBaseURL = "https://pubmed.ncbi.nlm.nih.gov"

	defaultRetMax       = 3
	defaultRelDateYears = 5
	defaultTimeout      = 10 * time.Second

	// Abstracts shorter than this are too thin to cite.
	minAbstractLen = 200
	// How much abstract text goes into a reference snippet.
	snippetLen = 300
)

// Article is one parsed PubMed record.
type Article struct {
	PMID     string
	Title    string
	Abstract string
	Year     string
	Citation string
}

// Client talks to the NCBI E-utilities endpoints.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	retMax       int
	relDateYears int
	tool         string
	email        string
	log          zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the E-utilities endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetMax sets how many article IDs a search may return.
func WithRetMax(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retMax = n
		}
	}
}

// WithContact sets the tool and email identifiers NCBI asks
// API consumers to send.
func WithContact(tool, email string) Option {
	return func(c *Client) {
		c.tool = tool
		c.email = email
	}
}

// New creates a PubMed client with sensible defaults.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		retMax:       defaultRetMax,
		relDateYears: defaultRelDateYears,
		tool:         "morningreport",
		log:          logging.WithComponent("pubmed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type efetchResponse struct {
	Articles []struct {
		Medline struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    string `xml:"ArticleTitle"`
				Abstract struct {
					Texts []string `xml:"AbstractText"`
				} `xml:"Abstract"`
				PubTypes []string `xml:"PublicationTypeList>PublicationType"`
				Journal  struct {
					PubDate struct {
						Year        string `xml:"Year"`
						MedlineDate string `xml:"MedlineDate"`
					} `xml:"JournalIssue>PubDate"`
				} `xml:"Journal"`
				Authors []struct {
					LastName string `xml:"LastName"`
				} `xml:"AuthorList>Author"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}

// Search runs an esearch followed by an efetch and returns parsed
// articles. Records without a substantive abstract and editorials are
// filtered out.
func (c *Client) Search(ctx context.Context, query string) ([]Article, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	ids, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.fetch(ctx, ids)
}

func (c *Client) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{
		"db":       {"pubmed"},
		"term":     {query},
		"retmax":   {fmt.Sprint(c.retMax)},
		"retmode":  {"json"},
		"reldate":  {fmt.Sprint(c.relDateYears * 365)},
		"datetype": {"pdat"},
	}
	c.addContact(params)

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pubmed search: decode response: %w", err)
	}
	return resp.Result.IDList, nil
}

func (c *Client) fetch(ctx context.Context, ids []string) ([]Article, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	c.addContact(params)

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("pubmed fetch: %w", err)
	}

	var resp efetchResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pubmed fetch: decode response: %w", err)
	}

	articles := make([]Article, 0, len(resp.Articles))
	for _, rec := range resp.Articles {
		art := rec.Medline.Article
		abstract := strings.Join(art.Abstract.Texts, " ")
		if len(abstract) < minAbstractLen {
			continue
		}
		if isEditorial(art.PubTypes) {
			continue
		}

		year := art.Journal.PubDate.Year
		if year == "" {
			// MedlineDate looks like "2023 Jan-Feb"
			if fields := strings.Fields(art.Journal.PubDate.MedlineDate); len(fields) > 0 {
				year = fields[0]
			}
		}
		author := "Unknown"
		if len(art.Authors) > 0 && art.Authors[0].LastName != "" {
			author = art.Authors[0].LastName
		}

		articles = append(articles, Article{
			PMID:     rec.Medline.PMID,
			Title:    art.Title,
			Abstract: abstract,
			Year:     year,
			Citation: fmt.Sprintf("%s et al. (%s)", author, year),
		})
	}
	return articles, nil
}

func isEditorial(pubTypes []string) bool {
	for _, pt := range pubTypes {
		if pt == "Editorial" {
			return true
		}
	}
	return false
}

func (c *Client) addContact(params url.Values) {
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Enrich looks up references for the analysis keywords. It never
// returns an error: enrichment is optional context, and a PubMed
// outage must not fail a completed analysis.
func (c *Client) Enrich(ctx context.Context, keywords []string) []analysis.Reference {
	query := buildQuery(keywords)
	if query == "" {
		return nil
	}

	articles, err := c.Search(ctx, query)
	if err != nil {
		c.log.Warn().Str("query", query).Err(err).Msg("reference lookup failed, continuing without references")
		return nil
	}

	refs := make([]analysis.Reference, 0, len(articles))
	for _, a := range articles {
		snippet := a.Abstract
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen] + "..."
		}
		refs = append(refs, analysis.Reference{
			Title:   fmt.Sprintf("%s (%s)", a.Title, a.Citation),
			URL:     fmt.Sprintf("%s/%s/", articleBaseURL, a.PMID),
			Snippet: snippet,
		})
	}
	c.log.Debug().Str("query", query).Int("references", len(refs)).Msg("reference lookup complete")
	return refs
}

// buildQuery combines up to three keywords into an AND query, which
// keeps results specific to the case instead of generic.
func buildQuery(keywords []string) string {
	terms := make([]string, 0, 3)
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		terms = append(terms, k)
		if len(terms) == 3 {
			break
		}
	}
	return strings.Join(terms, " AND ")
}
