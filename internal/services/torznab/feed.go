// Package torznab renders the Torznab/Newznab indexer documents served to the
// music manager: capabilities, result feeds and error envelopes.
package torznab

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

const (
	// DownloadPath is the retrieval endpoint prefix, followed by a result id
	DownloadPath = "/api/torznab/download/"

	nzbMimeType = "application/x-nzb"

	atomNamespace    = "http://www.w3.org/2005/Atom"
	newznabNamespace = "http://www.newznab.com/DTD/2010/feeds/attributes/"

	placeholderID = "tunarr-test"
)

// now is swapped in tests
var now = time.Now

// Feed represents the RSS result document
type Feed struct {
	XMLName      xml.Name `xml:"rss"`
	Version      string   `xml:"version,attr"`
	XmlnsAtom    string   `xml:"xmlns:atom,attr"`
	XmlnsNewznab string   `xml:"xmlns:newznab,attr"`
	Channel      Channel  `xml:"channel"`
}

// Channel represents the channel element in RSS
type Channel struct {
	Title       string   `xml:"title"`
	Description string   `xml:"description"`
	Response    Response `xml:"newznab:response"`
	Items       []Item   `xml:"item"`
}

// Response carries the pagination attributes of the whole result set
type Response struct {
	Offset int `xml:"offset,attr"`
	Total  int `xml:"total,attr"`
}

// Item represents a single search result
type Item struct {
	Title      string      `xml:"title"`
	GUID       GUID        `xml:"guid"`
	Link       string      `xml:"link"`
	PubDate    string      `xml:"pubDate"`
	Size       int64       `xml:"size"`
	Category   int         `xml:"category"`
	Enclosure  Enclosure   `xml:"enclosure"` // The NZB retrieval URL
	Attributes []Attribute `xml:"newznab:attr"`
}

// GUID is the stable result identifier
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Enclosure represents the enclosure element containing the NZB download URL
type Enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// Attribute represents a Newznab attribute (e.g. category, size)
type Attribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// DownloadURL returns the retrieval URL of a result
func DownloadURL(baseURL, id string) string {
	return baseURL + DownloadPath + id
}

// Paginate returns the page of results starting at offset. Out-of-range
// offsets yield an empty page.
func Paginate(results []models.GroupedSearchResult, offset, limit int) []models.GroupedSearchResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) || limit <= 0 {
		return []models.GroupedSearchResult{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

func newFeed(offset, total int) Feed {
	return Feed{
		Version:      "2.0",
		XmlnsAtom:    atomNamespace,
		XmlnsNewznab: newznabNamespace,
		Channel: Channel{
			Title:       "tunarr",
			Description: "Soulseek releases via slskd",
			Response:    Response{Offset: offset, Total: total},
		},
	}
}

func newItem(id, title string, size int64, category int, baseURL string) Item {
	link := DownloadURL(baseURL, id)
	attrs := []Attribute{
		{Name: "category", Value: strconv.Itoa(models.CategoryAudio)},
	}
	if category != models.CategoryAudio {
		attrs = append(attrs, Attribute{Name: "category", Value: strconv.Itoa(category)})
	}
	attrs = append(attrs, Attribute{Name: "size", Value: strconv.FormatInt(size, 10)})

	return Item{
		Title:      title,
		GUID:       GUID{Value: id},
		Link:       link,
		PubDate:    now().UTC().Format(time.RFC1123Z),
		Size:       size,
		Category:   category,
		Enclosure:  Enclosure{URL: link, Length: size, Type: nzbMimeType},
		Attributes: attrs,
	}
}

func marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal torznab document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Results renders one page of results. total is the size of the whole result
// set and offset the position of the page within it. Peer identities are never rendered.
func Results(page []models.GroupedSearchResult, total, offset int, baseURL string) ([]byte, error) {
	feed := newFeed(offset, total)
	feed.Channel.Items = make([]Item, 0, len(page))
	for _, r := range page {
		item := newItem(r.ID, utils.BuildReleaseTitle(r.DirectoryPath), r.TotalSize, r.Category, baseURL)
		item.Attributes = append(item.Attributes,
			Attribute{Name: "files", Value: strconv.Itoa(len(r.Files))},
			Attribute{Name: "grabs", Value: "0"},
		)
		if r.BitrateHint > 0 {
			item.Attributes = append(item.Attributes, Attribute{Name: "bitrate", Value: strconv.Itoa(r.BitrateHint)})
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}
	return marshal(feed)
}

// Placeholder renders the single-item document answered to queryless searches,
// which the music manager issues when testing the indexer.
func Placeholder(baseURL string) ([]byte, error) {
	feed := newFeed(0, 1)
	feed.Channel.Items = []Item{
		newItem(placeholderID, "tunarr indexer test", 0, models.CategoryAudio, baseURL),
	}
	return marshal(feed)
}
