package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReleaseTitle(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"last part already has separator", `Music\Radiohead - OK Computer`, "Radiohead - OK Computer"},
		{"non-generic parent", `Music\Radiohead\OK Computer`, "Radiohead - OK Computer"},
		{"all parents generic", `music\downloads\Album`, "Album"},
		{"single directory", "Album", "Album"},
		{"forward slashes", "Users/music/Radiohead/OK Computer", "Radiohead - OK Computer"},
		{"deep generic chain", "music/downloads/complete/Album", "Album"},
		{"generic match is case-insensitive", `My Music\SHARED\Album`, "Album"},
		{"empty segments discarded", `\\Music\\Portishead\\\Dummy\`, "Portishead - Dummy"},
		{"mixed separators", `D:\shared/Massive Attack\Mezzanine`, "Massive Attack - Mezzanine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildReleaseTitle(tt.dir))
		})
	}
}

func TestExtractDirectoryName(t *testing.T) {
	assert.Equal(t, "Album", ExtractDirectoryName(`Music\Album\track.flac`))
	assert.Equal(t, "Album", ExtractDirectoryName("Album/track.flac"))
	assert.Equal(t, "track.flac", ExtractDirectoryName("track.flac"))
	assert.Equal(t, "OK Computer", ExtractDirectoryName(`@@abc\Music\Radiohead\OK Computer\01.flac`))
}

func TestDirectoryOf(t *testing.T) {
	assert.Equal(t, `Music\Album`, DirectoryOf(`Music\Album\track.flac`))
	assert.Equal(t, "", DirectoryOf("track.flac"))
}
