package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"botanize/internal/recognition"
	"botanize/internal/traits"
)

const maxErrorBody = 512

// Taxon is a named rank in a Pl@ntNet result.
type Taxon struct {
	ScientificNameWithoutAuthor string `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string `json:"scientificNameAuthorship"`
	ScientificName              string `json:"scientificName"`
}

// Species describes the species of one result.
type Species struct {
	Taxon
	Genus       Taxon    `json:"genus"`
	Family      Taxon    `json:"family"`
	CommonNames []string `json:"commonNames"`
}

// Result is a single ranked match.
type Result struct {
	Score   float64 `json:"score"`
	Species Species `json:"species"`
}

// Response models the identify payload.
type Response struct {
	Query             Query    `json:"query"`
	Language          string   `json:"language"`
	BestMatch         string   `json:"bestMatch"`
	Results           []Result `json:"results"`
	RemainingRequests int      `json:"remainingIdentificationRequests"`
}

// Query echoes the request parameters.
type Query struct {
	Project string   `json:"project"`
	Organs  []string `json:"organs"`
}

// Client talks to the Pl@ntNet API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	project    string
	httpClient *http.Client
}

var _ recognition.Recognizer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithProject selects a Pl@ntNet flora project instead of "all".
func WithProject(project string) Option {
	return func(c *Client) {
		if project = strings.TrimSpace(project); project != "" {
			c.project = project
		}
	}
}

// New creates a Pl@ntNet client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("plantnet api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("plantnet base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		project:    "all",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Identify submits one image and returns candidates in provider order.
func (c *Client) Identify(ctx context.Context, req recognition.Request) ([]recognition.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := c.identify(ctx, req)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []recognition.Candidate{}, nil
	}
	return Candidates(payload), nil
}

func (c *Client) identify(ctx context.Context, req recognition.Request) (*Response, error) {
	endpoint, err := url.Parse(c.baseURL + "/identify/" + url.PathEscape(c.project))
	if err != nil {
		return nil, fmt.Errorf("parse plantnet url: %w", err)
	}
	params := url.Values{}
	params.Set("include-related-images", "false")
	params.Set("no-reject", "false")
	if c.language != "" {
		params.Set("lang", c.language)
	}
	params.Set("api-key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("plantnet identify returned %d (latency=%v): %s",
			resp.StatusCode, latency, strings.TrimSpace(string(snippet)))
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode plantnet response: %w", err)
	}
	return &payload, nil
}

func encodeForm(req recognition.Request) (io.Reader, string, error) {
	organ := req.Organ
	if organ == "" {
		organ = traits.OrganAuto
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "plant.jpg"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, filename))
	header.Set("Content-Type", http.DetectContentType(req.Image))
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}
	if err := w.WriteField("organs", string(organ)); err != nil {
		return nil, "", fmt.Errorf("write organs field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Candidates maps a response onto recognition candidates, preserving order and
// skipping results without a scientific name.
func Candidates(resp *Response) []recognition.Candidate {
	out := make([]recognition.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := strings.TrimSpace(r.Species.ScientificNameWithoutAuthor)
		if name == "" {
			name = strings.TrimSpace(r.Species.ScientificName)
		}
		if name == "" {
			continue
		}
		out = append(out, recognition.Candidate{
			ScientificName: name,
			Authorship:     r.Species.ScientificNameAuthorship,
			CommonNames:    r.Species.CommonNames,
			Family:         r.Species.Family.ScientificNameWithoutAuthor,
			Genus:          r.Species.Genus.ScientificNameWithoutAuthor,
			Score:          clampScore(r.Score),
			Rank:           len(out),
		})
	}
	return out
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
