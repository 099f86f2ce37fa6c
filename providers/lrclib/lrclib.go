// Package lrclib fetches lyrics from the lrclib.net API.
package lrclib

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dvalderas/playtag/engine/provider"
)

const defaultBaseURL = "https://lrclib.net"

type Client struct {
	caller  *provider.HTTPCaller
	baseURL string
}

func New(opts provider.HTTPOptions) *Client {
	return NewWithBaseURL(defaultBaseURL, opts)
}

func NewWithBaseURL(baseURL string, opts provider.HTTPOptions) *Client {
	return &Client{
		caller:  provider.NewHTTPCaller("lrclib", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Name() string { return "lrclib" }

type record struct {
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
	Instrumental bool   `json:"instrumental"`
}

func (r record) text() string {
	if r.Instrumental {
		return ""
	}
	if r.PlainLyrics != "" {
		return r.PlainLyrics
	}
	return r.SyncedLyrics
}

// Lyrics tries an exact signature lookup first and falls back to a loose
// search when the exact endpoint has no record.
func (c *Client) Lyrics(ctx context.Context, title, artist, album string, duration time.Duration) (string, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)
	if album != "" {
		params.Set("album_name", album)
	}
	if duration > 0 {
		params.Set("duration", strconv.Itoa(int(duration.Seconds())))
	}

	var exact record
	status, err := c.caller.GetJSON(ctx, c.baseURL+"/api/get?"+params.Encode(), &exact)
	if err != nil {
		return "", err
	}
	if status == 200 {
		if text := exact.text(); text != "" {
			return text, nil
		}
	}

	return c.search(ctx, title, artist)
}

func (c *Client) search(ctx context.Context, title, artist string) (string, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)

	var hits []record
	status, err := c.caller.GetJSON(ctx, c.baseURL+"/api/search?"+params.Encode(), &hits)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", provider.WrapErr("lrclib", "search", provider.ErrNotFound)
	}
	for _, hit := range hits {
		if text := hit.text(); text != "" {
			return text, nil
		}
	}
	return "", provider.WrapErr("lrclib", "search", provider.ErrNotFound)
}
