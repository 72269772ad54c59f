package utils

import "strings"

// genericDirNames are container directories that carry no artist or album information
var genericDirNames = map[string]struct{}{
	"music":     {},
	"downloads": {},
	"complete":  {},
	"shared":    {},
	"soulseek":  {},
	"slsk":      {},
	"incoming":  {},
	"files":     {},
	"media":     {},
	"audio":     {},
	"my music":  {},
}

func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// BuildReleaseTitle derives an "Artist - Album" style title from a remote directory path.
// Examples:
//
//	Music\Radiohead - OK Computer -> Radiohead - OK Computer
//	Music\Radiohead\OK Computer   -> Radiohead - OK Computer
//	music\downloads\Album         -> Album
func BuildReleaseTitle(directory string) string {
	parts := splitPath(directory)
	if len(parts) == 0 {
		return directory
	}

	last := parts[len(parts)-1]
	if strings.Contains(last, " - ") {
		return last
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if _, generic := genericDirNames[strings.ToLower(parts[i])]; !generic {
			return parts[i] + " - " + last
		}
	}

	return last
}

// ExtractDirectoryName returns the name of the directory that directly contains filename.
// A bare filename is returned unchanged.
func ExtractDirectoryName(filename string) string {
	lastSep := strings.LastIndexAny(filename, `/\`)
	if lastSep == -1 {
		return filename
	}
	dir := filename[:lastSep]
	parentSep := strings.LastIndexAny(dir, `/\`)
	if parentSep == -1 {
		return dir
	}
	return dir[parentSep+1:]
}

// DirectoryOf returns everything before the last path separator of filename,
// or "" when filename has no directory component.
func DirectoryOf(filename string) string {
	lastSep := strings.LastIndexAny(filename, `/\`)
	if lastSep == -1 {
		return ""
	}
	return filename[:lastSep]
}
