package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// Mastodon-style pagination: the server advertises adjacent pages through
// Link headers. We reduce each link to its raw query fragment, which becomes
// the opaque cursor for a later stateless fetch of the same path.
//
// Two optional headers extend the scheme:
//   - X-Total-Count: total item count, when the server knows it
//   - X-Partial: "true" when the page is incomplete and should be re-polled
//     (streamed home-timeline reads)
var linkRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="(\w+)"`)

func parseLink(header string) (next, prev *entities.Cursor) {
	for _, m := range linkRe.FindAllStringSubmatch(header, -1) {
		u, err := url.Parse(m[1])
		if err != nil || u.RawQuery == "" {
			continue
		}
		switch m[2] {
		case "next":
			next = &entities.Cursor{Query: u.RawQuery}
		case "prev":
			prev = &entities.Cursor{Query: u.RawQuery}
		}
	}
	return next, prev
}

// getPage fetches one page of a listing. The cursor, when non-nil, overrides
// params entirely: it is the verbatim query of the adjacent page as the
// server advertised it.
func getPage[E entities.Entity](ctx context.Context, hc HTTPClient, baseURL, path string, params url.Values, cur *entities.Cursor, resource string) (entities.Page[E], error) {
	var page entities.Page[E]
	rawURL := baseURL + path
	if cur != nil {
		rawURL += "?" + cur.Query
	} else if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}
	resp, err := do(ctx, hc, http.MethodGet, rawURL, nil, "list "+resource)
	if err != nil {
		return page, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(&page.Items); err != nil {
		return entities.Page[E]{}, apierr.NewValidationError(resource, err)
	}
	if err := validateIDs(resource, page.Items); err != nil {
		return entities.Page[E]{}, err
	}

	page.Next, page.Prev = parseLink(resp.Header.Get("Link"))
	page.Partial = resp.Header.Get("X-Partial") == "true"
	if tc := resp.Header.Get("X-Total-Count"); tc != "" {
		if n, err := strconv.Atoi(tc); err == nil {
			page.Total = &n
		}
	}
	return page, nil
}
