// Package acoustid identifies audio files by Chromaprint fingerprint via
// the AcoustID web service. It shells out to fpcalc for fingerprinting and
// degrades to "unsupported" when the binary or an API key is missing.
package acoustid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dvalderas/playtag/engine/provider"
)

const defaultBaseURL = "https://api.acoustid.org"

// Matches below this score are too unreliable to seed an identity from.
const minScore = 0.5

type Recognizer struct {
	caller     *provider.HTTPCaller
	baseURL    string
	apiKey     string
	fpcalcPath string
}

func New(apiKey, fpcalcPath string, opts provider.HTTPOptions) *Recognizer {
	return NewWithBaseURL(defaultBaseURL, apiKey, fpcalcPath, opts)
}

func NewWithBaseURL(baseURL, apiKey, fpcalcPath string, opts provider.HTTPOptions) *Recognizer {
	if fpcalcPath == "" {
		fpcalcPath = "fpcalc"
	}
	return &Recognizer{
		caller:     provider.NewHTTPCaller("acoustid", opts),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		fpcalcPath: fpcalcPath,
	}
}

func (r *Recognizer) Name() string { return "acoustid" }

// Recognize fingerprints the file and looks the print up. A missing API
// key or fpcalc binary yields ErrUnsupported so the resolver can skip
// fingerprinting without treating it as a failure.
func (r *Recognizer) Recognize(ctx context.Context, filePath string) (*provider.Candidate, error) {
	if r.apiKey == "" {
		return nil, provider.WrapErr("acoustid", "recognize", provider.ErrUnsupported)
	}
	if _, err := exec.LookPath(r.fpcalcPath); err != nil {
		return nil, provider.WrapErr("acoustid", "recognize", provider.ErrUnsupported)
	}

	fp, err := r.fingerprint(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return r.lookup(ctx, fp)
}

type chromaprint struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

func (r *Recognizer) fingerprint(ctx context.Context, filePath string) (*chromaprint, error) {
	out, err := exec.CommandContext(ctx, r.fpcalcPath, "-json", filePath).Output()
	if err != nil {
		return nil, provider.WrapErr("acoustid", "fpcalc", err)
	}
	var fp chromaprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return nil, provider.WrapErr("acoustid", "fpcalc", err)
	}
	if fp.Fingerprint == "" {
		return nil, provider.WrapErr("acoustid", "fpcalc", fmt.Errorf("empty fingerprint"))
	}
	return &fp, nil
}

type lookupResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Score      float64 `json:"score"`
		Recordings []struct {
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			ReleaseGroups []struct {
				Title string `json:"title"`
				Type  string `json:"type"`
			} `json:"releasegroups"`
		} `json:"recordings"`
	} `json:"results"`
}

func (r *Recognizer) lookup(ctx context.Context, fp *chromaprint) (*provider.Candidate, error) {
	params := url.Values{}
	params.Set("client", r.apiKey)
	params.Set("meta", "recordings releasegroups")
	params.Set("duration", strconv.Itoa(int(fp.Duration)))
	params.Set("fingerprint", fp.Fingerprint)

	var body lookupResponse
	status, err := r.caller.GetJSON(ctx, r.baseURL+"/v2/lookup?"+params.Encode(), &body)
	if err != nil {
		return nil, err
	}
	if status != 200 || body.Status != "ok" {
		return nil, provider.WrapErr("acoustid", "lookup", provider.ErrNotFound)
	}

	for _, result := range body.Results {
		if result.Score < minScore {
			continue
		}
		for _, rec := range result.Recordings {
			if rec.Title == "" || len(rec.Artists) == 0 {
				continue
			}
			cand := &provider.Candidate{
				Provider: "acoustid",
				Title:    rec.Title,
				Artist:   rec.Artists[0].Name,
			}
			for _, rg := range rec.ReleaseGroups {
				if strings.EqualFold(rg.Type, "Album") {
					cand.Album = rg.Title
					break
				}
			}
			return cand, nil
		}
	}
	return nil, provider.WrapErr("acoustid", "lookup", provider.ErrNotFound)
}

var _ provider.Recognizer = (*Recognizer)(nil)
