// Package itunes implements catalog search against the iTunes Search API.
package itunes

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/dvalderas/playtag/engine/provider"
)

const defaultBaseURL = "https://itunes.apple.com"

type Client struct {
	caller  *provider.HTTPCaller
	baseURL string
}

func New(opts provider.HTTPOptions) *Client {
	return NewWithBaseURL(defaultBaseURL, opts)
}

func NewWithBaseURL(baseURL string, opts provider.HTTPOptions) *Client {
	return &Client{
		caller:  provider.NewHTTPCaller("itunes", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Name() string { return "itunes" }

type track struct {
	TrackID          int64  `json:"trackId"`
	CollectionID     int64  `json:"collectionId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	PrimaryGenreName string `json:"primaryGenreName"`
	TrackNumber      int    `json:"trackNumber"`
	DiscNumber       int    `json:"discNumber"`
	DiscCount        int    `json:"discCount"`
	ReleaseDate      string `json:"releaseDate"`
	ArtworkURL100    string `json:"artworkUrl100"`
}

type response struct {
	ResultCount int     `json:"resultCount"`
	Results     []track `json:"results"`
}

// Search returns the API's top song hit for the query.
func (c *Client) Search(ctx context.Context, query string) (*provider.Candidate, error) {
	params := url.Values{}
	params.Set("term", query)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", "1")
	return c.fetchOne(ctx, c.baseURL+"/search?"+params.Encode())
}

// TrackDetail looks a track up by its store identifier.
func (c *Client) TrackDetail(ctx context.Context, trackID string) (*provider.Candidate, error) {
	params := url.Values{}
	params.Set("id", trackID)
	params.Set("entity", "song")
	return c.fetchOne(ctx, c.baseURL+"/lookup?"+params.Encode())
}

func (c *Client) fetchOne(ctx context.Context, rawURL string) (*provider.Candidate, error) {
	var body response
	status, err := c.caller.GetJSON(ctx, rawURL, &body)
	if err != nil {
		return nil, err
	}
	if status != 200 || body.ResultCount == 0 || len(body.Results) == 0 {
		return nil, provider.WrapErr("itunes", "search", provider.ErrNotFound)
	}
	return c.candidate(body.Results[0]), nil
}

func (c *Client) candidate(t track) *provider.Candidate {
	cand := &provider.Candidate{
		Provider:    "itunes",
		TrackID:     strconv.FormatInt(t.TrackID, 10),
		AlbumID:     strconv.FormatInt(t.CollectionID, 10),
		Title:       t.TrackName,
		Artist:      t.ArtistName,
		Album:       t.CollectionName,
		Genre:       t.PrimaryGenreName,
		TrackNumber: t.TrackNumber,
		DiscNumber:  t.DiscNumber,
		DiscCount:   t.DiscCount,
		CoverURL:    upscaleArtwork(t.ArtworkURL100),
	}
	if len(t.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(t.ReleaseDate[:4]); err == nil {
			cand.Year = year
		}
	}
	return cand
}

// upscaleArtwork rewrites the 100x100 thumbnail URL the API returns into
// the 600x600 variant the CDN also serves.
func upscaleArtwork(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	return strings.Replace(artworkURL, "100x100", "600x600", 1)
}

var _ provider.TrackDetailer = (*Client)(nil)
