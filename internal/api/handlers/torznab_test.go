package handlers

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlieNuckel/tunarr/internal/services/nzb"
)

type feedDoc struct {
	Channel struct {
		Response struct {
			Offset int `xml:"offset,attr"`
			Total  int `xml:"total,attr"`
		} `xml:"response"`
		Items []struct {
			Title string `xml:"title"`
			GUID  string `xml:"guid"`
			Link  string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (e *testEnv) torznabGet(t *testing.T, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.torznab.ServeHTTP(rec, req)
	return rec
}

func TestTorznabCaps(t *testing.T) {
	env := newTestEnv(t)
	rec := env.torznabGet(t, "/api/torznab?t=caps", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	body := rec.Body.String()
	assert.Contains(t, body, `<category id="3000" name="Audio">`)
	assert.Contains(t, body, `<subcat id="3010" name="MP3"></subcat>`)
	assert.Contains(t, body, `<subcat id="3040" name="Lossless"></subcat>`)
}

func TestTorznabUnknownFunction(t *testing.T) {
	env := newTestEnv(t)
	rec := env.torznabGet(t, "/api/torznab?t=tvsearch", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `code="202" description="No such function"`)
}

func TestTorznabPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	rec := env.torznabGet(t, "/api/torznab?t=search", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var feed feedDoc
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Len(t, feed.Channel.Items, 1)
	assert.Equal(t, int32(0), env.slskd.searches.Load())
}

func TestTorznabSearchAndDownload(t *testing.T) {
	env := newTestEnv(t)
	env.slskd.responses = radioheadResponses

	rec := env.torznabGet(t, "/api/torznab?t=music&artist=Radiohead&album=OK+Computer&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-")

	var feed feedDoc
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	require.Len(t, feed.Channel.Items, 1)
	assert.Equal(t, 2, feed.Channel.Response.Total)
	item := feed.Channel.Items[0]
	assert.Equal(t, "Radiohead - OK Computer", item.Title)
	assert.Equal(t, "http://example.com/api/torznab/download/"+item.GUID, item.Link)

	// The second page comes from cache
	rec = env.torznabGet(t, "/api/torznab?t=search&q=radiohead+ok+computer&offset=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), env.slskd.searches.Load())

	req := httptest.NewRequest(http.MethodGet, "/api/torznab/download/"+item.GUID, nil)
	req.SetPathValue("id", item.GUID)
	rec = httptest.NewRecorder()
	env.torznab.Download(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-nzb", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+item.GUID+`.nzb"`, rec.Header().Get("Content-Disposition"))

	md, err := nzb.Decode(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "secret-alice", md.PeerIdentity)
	assert.Len(t, md.Files, 2)
}

func TestTorznabDownloadUnknown(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/torznab/download/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	env.torznab.Download(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `code="300" description="Item not found"`)
}

func TestTorznabSearchBackendFailure(t *testing.T) {
	env := newTestEnv(t)
	env.slskd.down.Store(true)

	rec := env.torznabGet(t, "/api/torznab?t=search&q=anything", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `code="900"`)
}

func TestTorznabBaseURL(t *testing.T) {
	env := newTestEnv(t)
	env.slskd.responses = radioheadResponses

	rec := env.torznabGet(t, "/api/torznab?t=search&q=radiohead", map[string]string{
		"X-Forwarded-Proto": "https, http",
		"X-Forwarded-Host":  "tunarr.example.org",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://tunarr.example.org/api/torznab/download/")

	env.torznab.publicURL = "https://public.example/base"
	rec = env.torznabGet(t, "/api/torznab?t=search&q=radiohead", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "https://public.example/base/api/torznab/download/")
	assert.False(t, strings.Contains(body, "http://example.com"))
}
