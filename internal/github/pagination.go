package github

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strconv"

	"github.com/tidwall/gjson"
)

// linkPattern matches one entry of a Link header: <url>; rel="name".
var linkPattern = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="([a-z]+)"`)

// parseLinks maps rel names to URLs.
func parseLinks(header string) map[string]string {
	links := make(map[string]string)
	for _, m := range linkPattern.FindAllStringSubmatch(header, -1) {
		links[m[2]] = m[1]
	}
	return links
}

// lastPage returns the page number of the rel="last" link, or 0.
func lastPage(header string) int {
	last, ok := parseLinks(header)["last"]
	if !ok {
		return 0
	}
	u, err := url.Parse(last)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return 0
	}
	return n
}

// paginate walks a listing endpoint page by page. Pages are fetched lazily,
// so a consumer that stops early never pays for the remaining pages. A 409
// (empty repository) ends the sequence without error.
func paginate[T any](ctx context.Context, c *Client, path string, query url.Values) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("per_page", strconv.Itoa(c.pageSize))

		next := path
		for next != "" {
			var page []T
			header, err := c.getJSON(ctx, next, q, &page)
			if err != nil {
				if IsEmptyRepository(err) {
					return
				}
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}
			next = parseLinks(header.Get("Link"))["next"]
			q = nil
		}
	}
}

// count returns the size of a listing without fetching it: with one item
// per page, the number of the last page is the item count.
func (c *Client) count(ctx context.Context, path string, query url.Values) (int, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("per_page", "1")

	body, header, err := c.getBody(ctx, path, q)
	if err != nil {
		return 0, err
	}
	if n := lastPage(header.Get("Link")); n > 0 {
		return n, nil
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return 0, fmt.Errorf("github: %s: expected a JSON array", path)
	}
	return int(result.Get("#").Int()), nil
}
