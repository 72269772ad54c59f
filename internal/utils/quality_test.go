package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BlieNuckel/tunarr/internal/models"
)

func TestDetermineQuality(t *testing.T) {
	assert.Equal(t, models.QualityLossless, DetermineQuality(`Music\Album\01.FLAC`, 0))
	assert.Equal(t, models.QualityLossless, DetermineQuality("01.m4a", 24), "bit depth implies lossless")
	assert.Equal(t, models.QualityMP3, DetermineQuality(`a\b\01.mp3`, 0))
	assert.Equal(t, models.QualityOther, DetermineQuality("01.ogg", 0))
}

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile(`Music\Album\01.flac`))
	assert.True(t, IsAudioFile("01.MP3"))
	assert.False(t, IsAudioFile(`Music\Album\cover.jpg`))
	assert.False(t, IsAudioFile(`Music\Album.flac\notes`))
}

func TestBestQuality(t *testing.T) {
	assert.Equal(t, models.QualityLossless, BestQuality(models.QualityMP3, models.QualityLossless))
	assert.Equal(t, models.QualityOther, BestQuality())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "radiohead", Normalize("  RadioHead "))
	// Decomposed "ó" (o + combining acute) normalizes to the precomposed form
	assert.Equal(t, "sigur rós", Normalize("Sigur Ro\u0301s"))
	assert.Equal(t, Normalize("BJÖRK"), Normalize("björk"))
}

func TestRelevance(t *testing.T) {
	assert.Equal(t, 1.0, Relevance("Radiohead - OK Computer", "radiohead - ok computer"))
	assert.Greater(t, Relevance("Radiohead - OK Computer", "radiohead ok computer"),
		Relevance("Portishead - Dummy", "radiohead ok computer"))
	assert.Equal(t, 0.0, Relevance("anything", ""))
}

func TestRankResults(t *testing.T) {
	results := []models.GroupedSearchResult{
		{ID: "unrelated", DirectoryPath: `Music\Portishead\Dummy`, Quality: models.QualityLossless},
		{ID: "mp3", DirectoryPath: `Music\Radiohead\OK Computer`, Quality: models.QualityMP3},
		{ID: "flac-slow", DirectoryPath: `Music\Radiohead\OK Computer`, Quality: models.QualityLossless, UploadSpeed: 10},
		{ID: "flac-fast", DirectoryPath: `Music\Radiohead\OK Computer`, Quality: models.QualityLossless, UploadSpeed: 500},
		{ID: "flac-free", DirectoryPath: `Music\Radiohead\OK Computer`, Quality: models.QualityLossless, HasFreeSlot: true},
	}

	ranked := RankResults(results, "Radiohead OK Computer")

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"flac-free", "flac-fast", "flac-slow", "mp3", "unrelated"}, ids)
	assert.Equal(t, "unrelated", results[0].ID, "input slice is not reordered")
}
