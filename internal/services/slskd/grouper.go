package slskd

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

// resultNamespace scopes the name-based result ids so they cannot be reversed into a peer identity
var resultNamespace = uuid.MustParse("6f1d3c8e-2a47-4b5e-9c1f-7d2e8a9b0c34")

// Grouper turns raw peer responses into one candidate release per (peer, directory)
type Grouper struct {
	blacklist *utils.Blacklist
	logger    *logrus.Logger
}

// NewGrouper creates a result grouper. A nil blacklist filters nothing.
func NewGrouper(blacklist *utils.Blacklist, logger *logrus.Logger) *Grouper {
	return &Grouper{
		blacklist: blacklist,
		logger:    logger,
	}
}

// ResultID returns the stable identifier of the release at directory shared by peer
func ResultID(peer, directory string) string {
	return uuid.NewSHA1(resultNamespace, []byte(peer+"\x00"+directory)).String()
}

type directoryGroup struct {
	response  *SearchResponse
	directory string
	files     []models.ReleaseFile
	qualities []models.Quality
	bitrate   int
}

// Group deduplicates responses into ranked releases. Only unlocked audio files are kept.
func (g *Grouper) Group(query string, responses []SearchResponse) []models.GroupedSearchResult {
	var (
		order    []*directoryGroup
		byKey    = make(map[string]*directoryGroup)
		skipped  int
		filtered int
	)

	for i := range responses {
		resp := &responses[i]
		if resp.Username == "" {
			continue
		}
		for _, f := range resp.Files {
			if f.IsLocked || !utils.IsAudioFile(f.Filename) {
				skipped++
				continue
			}

			dir := utils.DirectoryOf(f.Filename)
			key := resp.Username + "\x00" + dir
			group, ok := byKey[key]
			if !ok {
				group = &directoryGroup{response: resp, directory: dir}
				byKey[key] = group
				order = append(order, group)
			}

			group.files = append(group.files, models.ReleaseFile{Filename: f.Filename, Size: f.Size})
			group.qualities = append(group.qualities, utils.DetermineQuality(f.Filename, f.BitDepth))
			if f.BitRate > group.bitrate {
				group.bitrate = f.BitRate
			}
		}
	}

	results := make([]models.GroupedSearchResult, 0, len(order))
	for _, group := range order {
		quality := utils.BestQuality(group.qualities...)
		result := models.GroupedSearchResult{
			ID:            ResultID(group.response.Username, group.directory),
			PeerIdentity:  group.response.Username,
			DirectoryPath: group.directory,
			Files:         group.files,
			TotalSize:     models.TotalFileSize(group.files),
			HasFreeSlot:   group.response.HasFreeUploadSlot,
			UploadSpeed:   group.response.UploadSpeed,
			BitrateHint:   group.bitrate,
			Quality:       quality,
			Category:      models.CategoryForQuality(quality),
		}

		if banned, entry := g.blacklist.IsBlacklisted(result); banned {
			filtered++
			g.logger.WithFields(logrus.Fields{
				"directory": result.DirectoryPath,
				"entry":     entry,
			}).Debug("Skipping blacklisted result")
			continue
		}
		results = append(results, result)
	}

	g.logger.WithFields(logrus.Fields{
		"responses":   len(responses),
		"releases":    len(results),
		"blacklisted": filtered,
		"skipped":     skipped,
	}).Debug("Grouped search responses")

	return utils.RankResults(results, query)
}
