package gif

import "context"

// Result is one ranked hit from a GIF search.
type Result struct {
	Ref        string `json:"ref"`
	PreviewRef string `json:"previewRef"`
	Title      string `json:"title"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// Provider searches an external GIF catalog.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Fallback is served whenever the provider is unconfigured, unreachable or
// comes back empty, so the captioning phase always has GIFs to offer.
var Fallback = []Result{
	{Ref: "https://media.giphy.com/media/3o7aCSPqXE5C6T8tBC/giphy.gif", PreviewRef: "https://media.giphy.com/media/3o7aCSPqXE5C6T8tBC/200.gif", Title: "confused travolta", Width: 480, Height: 270},
	{Ref: "https://media.giphy.com/media/l0MYt5jPR6QX5pnqM/giphy.gif", PreviewRef: "https://media.giphy.com/media/l0MYt5jPR6QX5pnqM/200.gif", Title: "mind blown", Width: 480, Height: 360},
	{Ref: "https://media.giphy.com/media/xT9IgG50Fb7Mi0prBC/giphy.gif", PreviewRef: "https://media.giphy.com/media/xT9IgG50Fb7Mi0prBC/200.gif", Title: "deal with it", Width: 480, Height: 270},
	{Ref: "https://media.giphy.com/media/26ufdipQqU2lhNA4g/giphy.gif", PreviewRef: "https://media.giphy.com/media/26ufdipQqU2lhNA4g/200.gif", Title: "this is fine", Width: 480, Height: 270},
	{Ref: "https://media.giphy.com/media/l3q2K5jinAlChoCLS/giphy.gif", PreviewRef: "https://media.giphy.com/media/l3q2K5jinAlChoCLS/200.gif", Title: "excited dance", Width: 480, Height: 480},
	{Ref: "https://media.giphy.com/media/3oEjI6SIIHBdRxXI40/giphy.gif", PreviewRef: "https://media.giphy.com/media/3oEjI6SIIHBdRxXI40/200.gif", Title: "shocked pikachu", Width: 480, Height: 362},
}

// SearchWithFallback queries p and substitutes the fallback list when p is
// nil, fails or finds nothing. The search itself failing is not an error at
// this level; the player always gets something to pick from.
func SearchWithFallback(ctx context.Context, p Provider, query string, limit int) []Result {
	if p != nil {
		results, err := p.Search(ctx, query, limit)
		if err == nil && len(results) > 0 {
			return results
		}
	}
	if limit > 0 && limit < len(Fallback) {
		return Fallback[:limit]
	}
	return Fallback
}
