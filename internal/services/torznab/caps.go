package torznab

import (
	"encoding/xml"

	"github.com/BlieNuckel/tunarr/internal/models"
)

// Error codes of the Newznab error envelope
const (
	ErrCodeNoSuchFunction = 202
	ErrCodeItemNotFound   = 300
	ErrCodeInternal       = 900
)

type capsDocument struct {
	XMLName    xml.Name     `xml:"caps"`
	Server     capsServer   `xml:"server"`
	Limits     capsLimits   `xml:"limits"`
	Searching  capsSearches `xml:"searching"`
	Categories []capsCat    `xml:"categories>category"`
}

type capsServer struct {
	Version string `xml:"version,attr"`
	Title   string `xml:"title,attr"`
}

type capsLimits struct {
	Max     int `xml:"max,attr"`
	Default int `xml:"default,attr"`
}

type capsSearches struct {
	Search      capsSearch `xml:"search"`
	MusicSearch capsSearch `xml:"music-search"`
	AudioSearch capsSearch `xml:"audio-search"`
	TVSearch    capsSearch `xml:"tv-search"`
	MovieSearch capsSearch `xml:"movie-search"`
}

type capsSearch struct {
	Available       string `xml:"available,attr"`
	SupportedParams string `xml:"supportedParams,attr,omitempty"`
}

type capsCat struct {
	ID      int       `xml:"id,attr"`
	Name    string    `xml:"name,attr"`
	Subcats []capsCat `xml:"subcat"`
}

type errorDocument struct {
	XMLName     xml.Name `xml:"error"`
	Code        int      `xml:"code,attr"`
	Description string   `xml:"description,attr"`
}

// Capabilities renders the caps document. The category ids are what the
// music manager maps its audio categories to.
func Capabilities(limit int) ([]byte, error) {
	musicParams := capsSearch{Available: "yes", SupportedParams: "q,artist,album"}
	return marshal(capsDocument{
		Server: capsServer{Version: "1.0", Title: "tunarr"},
		Limits: capsLimits{Max: limit, Default: limit},
		Searching: capsSearches{
			Search:      capsSearch{Available: "yes", SupportedParams: "q"},
			MusicSearch: musicParams,
			AudioSearch: musicParams,
			TVSearch:    capsSearch{Available: "no"},
			MovieSearch: capsSearch{Available: "no"},
		},
		Categories: []capsCat{{
			ID:   models.CategoryAudio,
			Name: "Audio",
			Subcats: []capsCat{
				{ID: models.CategoryMP3, Name: "MP3"},
				{ID: models.CategoryLossless, Name: "Lossless"},
			},
		}},
	})
}

// Error renders the Newznab error envelope
func Error(code int, description string) []byte {
	// an int and a string attribute cannot fail to marshal
	body, _ := marshal(errorDocument{Code: code, Description: description})
	return body
}
