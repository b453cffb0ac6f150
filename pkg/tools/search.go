package tools

import (
	"fmt"
	"strings"
)

// cannedSearch pairs a lowercase substring key with simulated results
// for a common development query.
type cannedSearch struct {
	key     string
	results []SearchResult
}

// cannedSearches is scanned in order; the first matching key wins, so
// a query hitting several keys always yields the same results. The
// search tool never fails: queries matching no key fall through to a
// generic placeholder.
var cannedSearches = []cannedSearch{
	{
		key: "bootstrap",
		results: []SearchResult{
			{
				Title:   "Bootstrap CDN",
				Snippet: "Latest Bootstrap CSS: https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css",
			},
		},
	},
	{
		key: "jquery",
		results: []SearchResult{
			{
				Title:   "jQuery CDN",
				Snippet: "Latest jQuery: https://code.jquery.com/jquery-3.6.0.min.js",
			},
		},
	},
	{
		key: "arxiv api",
		results: []SearchResult{
			{
				Title:   "arXiv API Documentation",
				Snippet: "arXiv API base URL: http://export.arxiv.org/api/query. Example: http://export.arxiv.org/api/query?search_query=cat:cs.AI&start=0&max_results=10",
			},
		},
	},
}

func (r *Registry) webSearch(args webSearchArgs) ToolResult {
	queryLower := strings.ToLower(args.Query)
	for _, canned := range cannedSearches {
		if strings.Contains(queryLower, canned.key) {
			return ToolResult{Success: true, Results: canned.results}
		}
	}

	return ToolResult{
		Success: true,
		Results: []SearchResult{
			{
				Title:   fmt.Sprintf("Search results for: %s", args.Query),
				Snippet: "Web search simulation - use appropriate CDN links and API endpoints for your implementation.",
			},
		},
	}
}
