package utils

import (
	"bufio"
	"os"
	"strings"

	"github.com/BlieNuckel/tunarr/internal/models"
)

const userPrefix = "user:"

// Blacklist holds banned peers and directory terms for filtering search results
type Blacklist struct {
	users map[string]struct{}
	terms []string
}

// NewBlacklist builds a blacklist from raw lines. Lines starting with "user:" ban a
// peer by exact name; other lines ban directories containing the term (case-insensitive).
func NewBlacklist(lines []string) *Blacklist {
	b := &Blacklist{users: make(map[string]struct{})}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), userPrefix) {
			if user := strings.TrimSpace(line[len(userPrefix):]); user != "" {
				b.users[user] = struct{}{}
			}
			continue
		}
		b.terms = append(b.terms, strings.ToLower(line))
	}
	return b
}

// LoadBlacklist loads blacklist entries from a file
func LoadBlacklist(path string) (*Blacklist, error) {
	// If file doesn't exist, return empty blacklist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewBlacklist(nil), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewBlacklist(lines), nil
}

// IsBlacklisted checks a result against the banned peers and terms.
// Returns (isBlacklisted, matchedEntry)
func (b *Blacklist) IsBlacklisted(result models.GroupedSearchResult) (bool, string) {
	if b == nil {
		return false, ""
	}
	if _, banned := b.users[result.PeerIdentity]; banned {
		return true, userPrefix + result.PeerIdentity
	}

	dirLower := strings.ToLower(result.DirectoryPath)
	for _, term := range b.terms {
		if strings.Contains(dirLower, term) {
			return true, term
		}
	}

	return false, ""
}

// Len returns the number of entries
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.users) + len(b.terms)
}
