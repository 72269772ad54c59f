package utils

import (
	"path"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/BlieNuckel/tunarr/internal/models"
)

var losslessExtensions = map[string]struct{}{
	".flac": {}, ".alac": {}, ".ape": {}, ".wav": {}, ".wv": {}, ".aiff": {}, ".aif": {},
}

var lossyExtensions = map[string]struct{}{
	".mp3": {}, ".m4a": {}, ".aac": {}, ".ogg": {}, ".opus": {}, ".wma": {},
}

var lowerCaser = cases.Lower(language.Und)

// Normalize applies NFC normalization, Unicode lowercasing and trimming
func Normalize(s string) string {
	return strings.TrimSpace(lowerCaser.String(norm.NFC.String(s)))
}

func extension(filename string) string {
	// Soulseek paths use backslashes, which path.Ext does not treat as separators
	return strings.ToLower(path.Ext(strings.ReplaceAll(filename, `\`, "/")))
}

// IsAudioFile reports whether filename has a known audio extension
func IsAudioFile(filename string) bool {
	ext := extension(filename)
	if _, ok := losslessExtensions[ext]; ok {
		return true
	}
	_, ok := lossyExtensions[ext]
	return ok
}

// DetermineQuality classifies a single file. A reported bit depth means the
// peer is sharing PCM-derived audio and is treated as lossless.
func DetermineQuality(filename string, bitDepth int) models.Quality {
	ext := extension(filename)
	if _, ok := losslessExtensions[ext]; ok || bitDepth > 0 {
		return models.QualityLossless
	}
	if ext == ".mp3" {
		return models.QualityMP3
	}
	return models.QualityOther
}

// BestQuality returns the highest of the given tiers
func BestQuality(qualities ...models.Quality) models.Quality {
	best := models.QualityOther
	for _, q := range qualities {
		if qualityValue(q) > qualityValue(best) {
			best = q
		}
	}
	return best
}

// Relevance scores how closely a release title matches the query, from 0 (unrelated) to 1 (identical)
func Relevance(title, query string) float64 {
	a, b := Normalize(title), Normalize(query)
	if a == "" || b == "" {
		return 0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// RankResults sorts results by:
// 1. Relevance to the query (in coarse buckets so quality can break near-ties)
// 2. Quality (LOSSLESS > MP3 > OTHER)
// 3. Free upload slot
// 4. Upload speed (faster is better)
// 5. Size (larger is better)
func RankResults(results []models.GroupedSearchResult, query string) []models.GroupedSearchResult {
	type ranked struct {
		result    models.GroupedSearchResult
		relevance int
	}

	items := make([]ranked, len(results))
	for i, r := range results {
		items[i] = ranked{
			result:    r,
			relevance: int(Relevance(BuildReleaseTitle(r.DirectoryPath), query) * 10),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.relevance != b.relevance {
			return a.relevance > b.relevance
		}
		if qa, qb := qualityValue(a.result.Quality), qualityValue(b.result.Quality); qa != qb {
			return qa > qb
		}
		if a.result.HasFreeSlot != b.result.HasFreeSlot {
			return a.result.HasFreeSlot
		}
		if a.result.UploadSpeed != b.result.UploadSpeed {
			return a.result.UploadSpeed > b.result.UploadSpeed
		}
		return a.result.TotalSize > b.result.TotalSize
	})

	sorted := make([]models.GroupedSearchResult, len(items))
	for i, item := range items {
		sorted[i] = item.result
	}
	return sorted
}

// qualityValue assigns a numeric value to each quality tier for comparison
func qualityValue(q models.Quality) int {
	switch q {
	case models.QualityLossless:
		return 3
	case models.QualityMP3:
		return 2
	case models.QualityOther:
		return 1
	default:
		return 0
	}
}
