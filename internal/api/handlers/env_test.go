package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/controllers"
	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/services/slskd"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

// fakeSlskd is an in-memory stand-in for the slskd REST API
type fakeSlskd struct {
	mu        sync.Mutex
	responses []slskd.SearchResponse
	groups    []slskd.TransferGroup
	enqueued  map[string][]slskd.DownloadRequest
	cancelled []string
	searches  atomic.Int32
	down      atomic.Bool
}

func (f *fakeSlskd) routes() http.Handler {
	mux := http.NewServeMux()
	guard := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if f.down.Load() {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("POST /api/v0/searches", guard(func(w http.ResponseWriter, r *http.Request) {
		f.searches.Add(1)
		var req slskd.SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(slskd.Search{ID: req.ID, SearchText: req.SearchText, State: slskd.SearchStateInProgress})
	}))
	mux.HandleFunc("GET /api/v0/searches/{id}", guard(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(slskd.Search{ID: r.PathValue("id"), State: slskd.SearchStateCompleted, IsComplete: true})
	}))
	mux.HandleFunc("GET /api/v0/searches/{id}/responses", guard(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.responses)
	}))
	mux.HandleFunc("DELETE /api/v0/searches/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v0/transfers/downloads/{username}", guard(func(w http.ResponseWriter, r *http.Request) {
		var req []slskd.DownloadRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.enqueued[r.PathValue("username")] = req
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	mux.HandleFunc("GET /api/v0/transfers/downloads", guard(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.groups)
	}))
	mux.HandleFunc("DELETE /api/v0/transfers/downloads/{username}/{id}", guard(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.cancelled = append(f.cancelled, r.PathValue("username")+"/"+r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	return mux
}

func (f *fakeSlskd) setGroups(groups []slskd.TransferGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = groups
}

type testEnv struct {
	cfg          *config.Config
	slskd        *fakeSlskd
	searchCtrl   *controllers.SearchController
	downloadCtrl *controllers.DownloadController
	torznab      *TorznabHandler
	sabnzbd      *SABnzbdHandler
	logger       *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := &fakeSlskd{enqueued: make(map[string][]slskd.DownloadRequest)}
	srv := httptest.NewServer(fake.routes())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SlskdURL:          srv.URL,
		SlskdDownloadPath: "/downloads",
		SearchTimeout:     time.Second,
		CacheTTL:          time.Minute,
		ResultLimit:       100,
	}
	logger := utils.NewLoggerWithOutput("error", io.Discard)

	client, err := slskd.NewClient(cfg, logger)
	require.NoError(t, err)

	searchCtrl := controllers.NewSearchController(cfg, client, slskd.NewGrouper(nil, logger), logger)
	downloadCtrl := controllers.NewDownloadController(cfg, client, models.NewJobRegistry(), logger)

	return &testEnv{
		cfg:          cfg,
		slskd:        fake,
		searchCtrl:   searchCtrl,
		downloadCtrl: downloadCtrl,
		torznab:      NewTorznabHandler(cfg, searchCtrl, logger),
		sabnzbd:      NewSABnzbdHandler(cfg, downloadCtrl, logger),
		logger:       logger,
	}
}

var radioheadResponses = []slskd.SearchResponse{
	{
		Username:          "secret-alice",
		HasFreeUploadSlot: true,
		UploadSpeed:       1 << 20,
		Files: []slskd.File{
			{Filename: `@@music\Radiohead\OK Computer\01 Airbag.flac`, Size: 30 << 20},
			{Filename: `@@music\Radiohead\OK Computer\02 Paranoid Android.flac`, Size: 40 << 20},
		},
	},
	{
		Username: "secret-bob",
		Files: []slskd.File{
			{Filename: `share\Radiohead - OK Computer\01.mp3`, Size: 8 << 20, BitRate: 320},
		},
	},
}
