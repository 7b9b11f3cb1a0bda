package utils

import (
	"strings"

	"flightbot-service/internal/domain/entity"
)

// DefaultPageSize is used when a page carries no size
const DefaultPageSize = 3

// NoMoreResultsNotice is sent instead of an empty page
const NoMoreResultsNotice = "⚠️ That's all the results I have. You can reply cancel or reset to search again."

// NewResultsPage wraps formatted items with the cursor at the start
func NewResultsPage(items []string, pageSize int) *entity.SearchResultsPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &entity.SearchResultsPage{
		Items:    items,
		Cursor:   0,
		PageSize: pageSize,
	}
}

// FirstPage renders the first page of items and returns the page positioned after it
func FirstPage(items []string, pageSize int) (string, *entity.SearchResultsPage) {
	text, next, _ := NextPage(NewResultsPage(items, pageSize))
	return text, next
}

// NextPage renders the page at the cursor and returns a copy with the cursor advanced.
// When nothing is left it returns the notice, the unchanged page and false.
func NextPage(page *entity.SearchResultsPage) (string, *entity.SearchResultsPage, bool) {
	if page.Exhausted() {
		return NoMoreResultsNotice, page.Clone(), false
	}

	size := page.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start := page.Cursor
	if start < 0 {
		start = 0
	}
	end := min(start+size, len(page.Items))

	next := page.Clone()
	next.Cursor = end
	return strings.Join(page.Items[start:end], "\n\n"), next, true
}

// ReplayPage rewinds cached results to the first page
func ReplayPage(page *entity.SearchResultsPage) (string, *entity.SearchResultsPage, bool) {
	if page == nil {
		return NoMoreResultsNotice, nil, false
	}
	rewound := page.Clone()
	rewound.Cursor = 0
	return NextPage(rewound)
}
