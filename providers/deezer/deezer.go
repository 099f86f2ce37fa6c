// Package deezer implements catalog search against the Deezer public API.
package deezer

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/dvalderas/playtag/engine/provider"
)

const defaultBaseURL = "https://api.deezer.com"

type Client struct {
	caller  *provider.HTTPCaller
	baseURL string
}

func New(opts provider.HTTPOptions) *Client {
	return NewWithBaseURL(defaultBaseURL, opts)
}

func NewWithBaseURL(baseURL string, opts provider.HTTPOptions) *Client {
	return &Client{
		caller:  provider.NewHTTPCaller("deezer", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Name() string { return "deezer" }

// Deezer reports errors as 200 responses with an error object.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type searchResponse struct {
	Data []struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album struct {
			ID       int64  `json:"id"`
			Title    string `json:"title"`
			CoverBig string `json:"cover_big"`
		} `json:"album"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

// Search returns the top hit for the query.
func (c *Client) Search(ctx context.Context, query string) (*provider.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)

	var body searchResponse
	status, err := c.caller.GetJSON(ctx, c.baseURL+"/search?"+params.Encode(), &body)
	if err != nil {
		return nil, err
	}
	if status != 200 || body.Error != nil || len(body.Data) == 0 {
		return nil, provider.WrapErr("deezer", "search", provider.ErrNotFound)
	}

	hit := body.Data[0]
	return &provider.Candidate{
		Provider: "deezer",
		TrackID:  strconv.FormatInt(hit.ID, 10),
		AlbumID:  strconv.FormatInt(hit.Album.ID, 10),
		Title:    hit.Title,
		Artist:   hit.Artist.Name,
		Album:    hit.Album.Title,
		CoverURL: hit.Album.CoverBig,
	}, nil
}

type trackResponse struct {
	TrackPosition int    `json:"track_position"`
	DiskNumber    int    `json:"disk_number"`
	ReleaseDate   string `json:"release_date"`
	Album         struct {
		ID int64 `json:"id"`
	} `json:"album"`
	Error *apiError `json:"error"`
}

// TrackDetail fetches position and release data the search payload omits.
func (c *Client) TrackDetail(ctx context.Context, trackID string) (*provider.Candidate, error) {
	var body trackResponse
	status, err := c.caller.GetJSON(ctx, c.baseURL+"/track/"+url.PathEscape(trackID), &body)
	if err != nil {
		return nil, err
	}
	if status != 200 || body.Error != nil {
		return nil, provider.WrapErr("deezer", "track", provider.ErrNotFound)
	}

	cand := &provider.Candidate{
		Provider:    "deezer",
		TrackID:     trackID,
		AlbumID:     strconv.FormatInt(body.Album.ID, 10),
		TrackNumber: body.TrackPosition,
		DiscNumber:  body.DiskNumber,
		Year:        yearOf(body.ReleaseDate),
	}
	return cand, nil
}

type albumResponse struct {
	Genres struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	} `json:"genres"`
	ReleaseDate string    `json:"release_date"`
	Error       *apiError `json:"error"`
}

// AlbumDetail fetches album-level genre and release data.
func (c *Client) AlbumDetail(ctx context.Context, albumID string) (*provider.Candidate, error) {
	var body albumResponse
	status, err := c.caller.GetJSON(ctx, c.baseURL+"/album/"+url.PathEscape(albumID), &body)
	if err != nil {
		return nil, err
	}
	if status != 200 || body.Error != nil {
		return nil, provider.WrapErr("deezer", "album", provider.ErrNotFound)
	}

	cand := &provider.Candidate{
		Provider: "deezer",
		AlbumID:  albumID,
		Year:     yearOf(body.ReleaseDate),
	}
	if len(body.Genres.Data) > 0 {
		cand.Genre = body.Genres.Data[0].Name
	}
	return cand, nil
}

func yearOf(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

var (
	_ provider.TrackDetailer = (*Client)(nil)
	_ provider.AlbumDetailer = (*Client)(nil)
)
