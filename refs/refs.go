// Package refs resolves citation source groups into a deduplicated,
// stable-ordered reference list for the document's References section.
package refs

import (
	"regexp"
	"strconv"
	"strings"
)

var httpURLRe = regexp.MustCompile(`^https?://`)

// DocumentMeta is per-document metadata aligned with the group's documents.
type DocumentMeta struct {
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
}

// SourceInfo is group-level source identity.
type SourceInfo struct {
	ID   string   `json:"id,omitempty"`
	Name string   `json:"name,omitempty"`
	URLs []string `json:"urls,omitempty"`
}

// SourceGroup is one retrieval result contributing zero or more documents.
type SourceGroup struct {
	Documents []string       `json:"document,omitempty"`
	Metadata  []DocumentMeta `json:"metadata,omitempty"`
	Source    SourceInfo     `json:"source,omitempty"`
}

// Reference is a deduplicated citation entry. Index is 1-based and assigned
// in first-encounter order.
type Reference struct {
	Index    int
	Anchor   string
	Title    string
	URL      string
	SourceID string
}

const anchorPrefix = "MDCRef"

// Anchor returns the bookmark name for a reference index. Citation markers
// and reference entries must agree on it.
func Anchor(index int) string {
	return anchorPrefix + strconv.Itoa(index)
}

// Build walks source groups in order and produces the reference list.
// Dedup key is the metadata source id, falling back to the group id, then
// the literal "N/A". The first occurrence of a key wins title and URL.
func Build(groups []SourceGroup) []Reference {
	indexByKey := make(map[string]int)
	var refs []Reference

	for _, group := range groups {
		for docIdx := range group.Documents {
			var meta DocumentMeta
			if docIdx < len(group.Metadata) {
				meta = group.Metadata[docIdx]
			}

			key := meta.Source
			if key == "" {
				key = group.Source.ID
			}
			if key == "" {
				key = "N/A"
			}
			if _, seen := indexByKey[key]; seen {
				continue
			}
			idx := len(indexByKey) + 1
			indexByKey[key] = idx

			url := ""
			switch {
			case httpURLRe.MatchString(key):
				url = key
			case httpURLRe.MatchString(meta.URL):
				url = meta.URL
			case len(group.Source.URLs) > 0 && httpURLRe.MatchString(group.Source.URLs[0]):
				url = group.Source.URLs[0]
			}

			title := meta.Title
			if title == "" {
				title = meta.Name
			}
			if title == "" && strings.TrimSpace(group.Source.Name) != "" {
				title = group.Source.Name
			}
			if title == "" {
				title = url
			}
			if title == "" {
				title = key
			}

			refs = append(refs, Reference{
				Index:    idx,
				Anchor:   Anchor(idx),
				Title:    title,
				URL:      url,
				SourceID: key,
			})
		}
	}
	return refs
}

// AnchorByIndex builds the lookup the inline resolver uses to turn [N]
// markers into cross-references.
func AnchorByIndex(refs []Reference) map[int]string {
	m := make(map[int]string, len(refs))
	for _, r := range refs {
		m[r.Index] = r.Anchor
	}
	return m
}
