package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/minutes/internal/blob"
	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/store"
)

func setupTest(t *testing.T) (*Handlers, http.Handler) {
	t.Helper()
	st := store.New(blob.NewMemory(0), config.DefaultConfig(), zerolog.Nop())
	h, err := newHandlers(st, "test", zerolog.Nop())
	require.NoError(t, err)
	static, err := fs.Sub(staticFS, "static")
	require.NoError(t, err)
	return h, routes(h, static)
}

func seedMeeting(t *testing.T, h *Handlers, title, transcript string) *meeting.Record {
	t.Helper()
	rec, err := h.store.Save(context.Background(), meeting.Candidate{
		Title:            title,
		Transcript:       transcript,
		Summary:          "**Decided** to ship.",
		Participants:     []string{"Ana", "Ben"},
		RecordingSeconds: 90,
	})
	require.NoError(t, err)
	return rec
}

func do(t *testing.T, handler http.Handler, method, target string, jsonAccept bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if jsonAccept {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// --- list ---

func TestHandleList_HTML(t *testing.T) {
	h, handler := setupTest(t)
	seedMeeting(t, h, "Quarterly planning", "We met.")

	rec := do(t, handler, "GET", "/meetings", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	require.Contains(t, body, "<!DOCTYPE html>")
	require.Contains(t, body, "Quarterly planning")
	require.Contains(t, body, "01:30")
	require.Contains(t, body, "Ana, Ben")
}

func TestHandleList_Empty(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "GET", "/meetings", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No meetings found")
}

func TestHandleList_JSON(t *testing.T) {
	h, handler := setupTest(t)
	seedMeeting(t, h, "First", "")
	seedMeeting(t, h, "Second", "")

	rec := do(t, handler, "GET", "/meetings?limit=1", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		Pagination struct {
			Total   int  `json:"total"`
			HasMore bool `json:"has_more"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	require.Equal(t, "Second", out.Items[0].Title)
	require.Equal(t, 2, out.Pagination.Total)
	require.True(t, out.Pagination.HasMore)
}

func TestHandleList_Query(t *testing.T) {
	h, handler := setupTest(t)
	seedMeeting(t, h, "Budget", "")
	seedMeeting(t, h, "Hiring", "")

	rec := do(t, handler, "GET", "/meetings?q=budget", false)
	body := rec.Body.String()
	require.Contains(t, body, "Budget")
	require.NotContains(t, body, ">Hiring<")
}

func TestHandleList_InvalidLimitFallsBack(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "GET", "/meetings?limit=notanumber&offset=bad", true)
	require.Equal(t, http.StatusOK, rec.Code)
}

// --- detail ---

func TestHandleDetail_HTML(t *testing.T) {
	h, handler := setupTest(t)
	m := seedMeeting(t, h, "Retro", "Went well. <script>alert(1)</script>")

	rec := do(t, handler, "GET", "/meetings/"+m.ID, false)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Retro")
	require.Contains(t, body, "<strong>Decided</strong>")
	require.Contains(t, body, "Went well.")
	require.NotContains(t, body, "<script>alert(1)</script>")
	require.Contains(t, body, "words per minute")
	require.Contains(t, body, `data-delete="/meetings/`+m.ID+`"`)
}

func TestHandleDetail_JSON(t *testing.T) {
	h, handler := setupTest(t)
	m := seedMeeting(t, h, "Retro", "one two three")

	rec := do(t, handler, "GET", "/meetings/"+m.ID, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, m.ID, out["id"])
	require.Equal(t, "one two three", out["transcript"])
	require.Equal(t, float64(3), out["wordCount"])
}

func TestHandleDetail_NotFound(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "GET", "/meetings/missing", false)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "meeting not found: missing")

	rec = do(t, handler, "GET", "/meetings/missing", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "NOT_FOUND", out["error"]["code"])
}

// --- delete ---

func TestHandleDelete_JSON(t *testing.T) {
	h, handler := setupTest(t)
	m := seedMeeting(t, h, "Gone", "")

	rec := do(t, handler, "DELETE", "/meetings/"+m.ID, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"deleted":true`)

	_, ok := h.store.GetByID(context.Background(), m.ID)
	require.False(t, ok)

	rec = do(t, handler, "DELETE", "/meetings/"+m.ID, true)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDelete_Redirects(t *testing.T) {
	h, handler := setupTest(t)
	m := seedMeeting(t, h, "Gone", "")

	rec := do(t, handler, "DELETE", "/meetings/"+m.ID, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/meetings", rec.Header().Get("Location"))
}

func TestDeleteOnListNotAllowed(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "DELETE", "/meetings", false)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// --- stats, metrics, misc ---

func TestHandleStats(t *testing.T) {
	h, handler := setupTest(t)
	seedMeeting(t, h, "A", "one two")

	rec := do(t, handler, "GET", "/stats", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"meetings":1`)

	rec = do(t, handler, "GET", "/stats", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "1 of 50 kept")
}

func TestMetricsEndpoint(t *testing.T) {
	h, handler := setupTest(t)
	seedMeeting(t, h, "Counted", "")

	rec := do(t, handler, "GET", "/metrics", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "minutes_store_saves_total")
}

func TestRootRedirects(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "GET", "/", false)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/meetings", rec.Header().Get("Location"))
}

func TestStaticAssets(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "GET", "/static/style.css", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Header().Get("Content-Type"), "css"))
}

func TestSecurityHeaders(t *testing.T) {
	_, handler := setupTest(t)

	rec := do(t, handler, "GET", "/meetings", false)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for in, want := range tests {
		require.Equal(t, want, formatCount(in))
	}
}

func TestNewServerAddr(t *testing.T) {
	st := store.New(blob.NewMemory(0), config.DefaultConfig(), zerolog.Nop())
	srv, err := NewServer(st, "test", "127.0.0.1", 8080, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", srv.Addr)
}
