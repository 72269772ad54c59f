package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/controllers"
	"github.com/BlieNuckel/tunarr/internal/services/nzb"
	"github.com/BlieNuckel/tunarr/internal/services/torznab"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

// TorznabHandler serves the indexer protocol
type TorznabHandler struct {
	searchCtrl *controllers.SearchController
	limit      int
	publicURL  string
	logger     *logrus.Logger
}

// NewTorznabHandler creates a new Torznab handler
func NewTorznabHandler(cfg *config.Config, searchCtrl *controllers.SearchController, logger *logrus.Logger) *TorznabHandler {
	return &TorznabHandler{
		searchCtrl: searchCtrl,
		limit:      cfg.ResultLimit,
		publicURL:  cfg.PublicURL,
		logger:     logger,
	}
}

func (h *TorznabHandler) writeXML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.WithError(err).Debug("Failed to write Torznab response")
	}
}

func (h *TorznabHandler) writeError(w http.ResponseWriter, status, code int, description string) {
	h.writeXML(w, status, torznab.Error(code, description))
}

// baseURL is PUBLIC_URL when set, otherwise derived from the request and any reverse proxy headers
func (h *TorznabHandler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if fwd := firstHeaderValue(r, "X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

func firstHeaderValue(r *http.Request, name string) string {
	v, _, _ := strings.Cut(r.Header.Get(name), ",")
	return strings.TrimSpace(v)
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// ServeHTTP handles GET /api/torznab?t=caps|search|music
func (h *TorznabHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch t := query.Get("t"); t {
	case "caps":
		body, err := torznab.Capabilities(h.limit)
		if err != nil {
			h.logger.WithError(err).Error("Failed to render capabilities")
			h.writeError(w, http.StatusInternalServerError, torznab.ErrCodeInternal, "Internal error")
			return
		}
		h.writeXML(w, http.StatusOK, body)

	case "search", "music":
		h.search(w, r)

	default:
		h.logger.WithField("t", t).Debug("Unsupported Torznab function")
		h.writeError(w, http.StatusBadRequest, torznab.ErrCodeNoSuchFunction, "No such function")
	}
}

func (h *TorznabHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	baseURL := h.baseURL(r)

	q := controllers.BuildSearchQuery(query.Get("q"), query.Get("artist"), query.Get("album"))
	if q == "" {
		body, err := torznab.Placeholder(baseURL)
		if err != nil {
			h.logger.WithError(err).Error("Failed to render placeholder")
			h.writeError(w, http.StatusInternalServerError, torznab.ErrCodeInternal, "Internal error")
			return
		}
		h.writeXML(w, http.StatusOK, body)
		return
	}

	offset := intParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := intParam(r, "limit", h.limit)
	if limit <= 0 || limit > h.limit {
		limit = h.limit
	}

	results, err := h.searchCtrl.GetOrSearchResults(r.Context(), q)
	if err != nil {
		h.logger.WithError(err).WithField("query", q).Error("Torznab search failed")
		h.writeError(w, http.StatusBadGateway, torznab.ErrCodeInternal, "Internal error")
		return
	}

	// Every surfaced result stays fetchable for download, whatever page it is on
	h.searchCtrl.CacheResultsForDownload(results)

	body, err := torznab.Results(torznab.Paginate(results, offset, limit), len(results), offset, baseURL)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render results")
		h.writeError(w, http.StatusInternalServerError, torznab.ErrCodeInternal, "Internal error")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"query":  q,
		"total":  len(results),
		"offset": offset,
		"limit":  limit,
	}).Info("Torznab search served")

	h.writeXML(w, http.StatusOK, body)
}

// Download handles GET /api/torznab/download/{id}
func (h *TorznabHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	h.searchCtrl.CleanExpired()
	result, ok := h.searchCtrl.GetCachedResult(id)
	if !ok {
		h.logger.WithField("id", id).Debug("Download requested for unknown result")
		h.writeError(w, http.StatusNotFound, torznab.ErrCodeItemNotFound, "Item not found")
		return
	}

	title := utils.BuildReleaseTitle(result.DirectoryPath)
	body, err := nzb.Encode(title, nzb.Metadata{
		PeerIdentity: result.PeerIdentity,
		Files:        result.Files,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode NZB")
		h.writeError(w, http.StatusInternalServerError, torznab.ErrCodeInternal, "Internal error")
		return
	}

	w.Header().Set("Content-Type", "application/x-nzb")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.nzb"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WithError(err).Debug("Failed to write NZB")
	}
}
