package giphy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shinramenisbae/mashed/internal/gif"
)

type Client struct {
	APIKey  string
	BaseURL string
	http    *http.Client
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.giphy.com"
	}
	return &Client{APIKey: apiKey, BaseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]gif.Result, error) {
	if c.APIKey == "" {
		return nil, errors.New("missing GIPHY_API_KEY")
	}
	if limit <= 0 {
		limit = 12
	}
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("rating", "pg-13")

	req, _ := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/v1/gifs/search?"+q.Encode(), nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("giphy status %d", resp.StatusCode)
	}

	var out struct {
		Data []struct {
			Title  string `json:"title"`
			Images struct {
				Original struct {
					URL    string `json:"url"`
					Width  string `json:"width"`
					Height string `json:"height"`
				} `json:"original"`
				FixedHeight struct {
					URL string `json:"url"`
				} `json:"fixed_height"`
			} `json:"images"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	results := make([]gif.Result, 0, len(out.Data))
	for _, d := range out.Data {
		w, _ := strconv.Atoi(d.Images.Original.Width)
		h, _ := strconv.Atoi(d.Images.Original.Height)
		results = append(results, gif.Result{
			Ref:        d.Images.Original.URL,
			PreviewRef: d.Images.FixedHeight.URL,
			Title:      d.Title,
			Width:      w,
			Height:     h,
		})
	}
	return results, nil
}
