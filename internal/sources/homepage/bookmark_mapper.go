package homepage

import (
	"fmt"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
)

// BookmarkMapper converts Homepage bookmark config to link records
type BookmarkMapper struct{}

// NewBookmarkMapper creates a new bookmark mapper
func NewBookmarkMapper() *BookmarkMapper {
	return &BookmarkMapper{}
}

// MapBookmarks converts BookmarksConfig into link records, one group per
// bookmark category.
func (m *BookmarkMapper) MapBookmarks(config BookmarksConfig) ([]domain.RawLink, error) {
	links := make([]domain.RawLink, 0)

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					if entry.Href == "" {
						continue
					}

					// The bookmark name is the display name; abbr is only a
					// fallback for the description.
					description := entry.Description
					if description == "" && entry.Abbr != "" && entry.Abbr != bookmarkName {
						description = entry.Abbr
					}

					links = append(links, domain.RawLink{
						"id":          generateLinkID(entry.Href),
						"name":        bookmarkName,
						"url":         entry.Href,
						"group":       categoryName,
						"description": description,
					})
				}
			}
		}
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in config")
	}

	return links, nil
}
