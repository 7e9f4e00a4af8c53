package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/balkashynov/pilotlog/internal/db"
	"github.com/balkashynov/pilotlog/internal/events"
	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/testutil"
)

const logbookCSV = `date,flight,from,to,block,tail,type
2025-01-20,10,KHOU,KDAL,60,N1,737-700
2025-01-21,11,KDAL,KHOU,65,N1,737-700
not-a-date,12,KHOU,KDEN,150,N2,737-700
`

func newTestServer(t *testing.T) (*httptest.Server, *events.Hub) {
	t.Helper()
	logger := testutil.NewTestLogger(t)

	store, err := db.Open(filepath.Join(t.TempDir(), "logbook.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hub := events.NewHub(8)
	svc := logbook.New(store, importer.New(nil, logger), logbook.Options{
		Publisher: hub,
		Logger:    logger,
		Now:       func() time.Time { return time.Date(2025, 1, 24, 9, 0, 0, 0, time.UTC) },
	})

	srv := New(Config{Service: svc, Hub: hub, DefaultSource: models.SourceManual, Logger: logger})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, hub
}

func upload(t *testing.T, ts *httptest.Server, filename, content, source string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	if source != "" {
		require.NoError(t, mw.WriteField("source", source))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/import", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestImportAndQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := upload(t, ts, "book.csv", logbookCSV, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report importer.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 3, report.RowsProcessed)
	assert.Equal(t, 2, report.RowsImported)
	assert.Equal(t, 1, report.RowsSkipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 4, report.Errors[0].Row)
	assert.Equal(t, "2:05", report.Summary.NewBlockFormatted)

	var flights logbook.FlightsResult
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/flights?limit=1", &flights))
	assert.Equal(t, int64(2), flights.Total)
	assert.Len(t, flights.Flights, 1)

	var stats map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/stats", &stats))
	assert.Equal(t, float64(2), stats["total_flights"])
	assert.Equal(t, "2:05", stats["total_block_formatted"])

	var rolling logbook.RollingResult
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/rolling?windows=1,7", &rolling))
	assert.Equal(t, "2025-01-24", rolling.AsOf)
	require.Len(t, rolling.Windows, 2)
	assert.Equal(t, 0, rolling.Windows[0].Flights)
	assert.Equal(t, 125, rolling.Windows[1].Minutes)

	var routes logbook.RoutesResult
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/routes", &routes))
	assert.Len(t, routes.Routes, 2)
	assert.Len(t, routes.Airports, 2)

	var view map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/map", &view))
	assert.Len(t, view["unlocated"], 2)

	var batches []models.ImportBatch
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/batches", &batches))
	require.Len(t, batches, 1)
	assert.Equal(t, report.BatchID, batches[0].ID)
	assert.Len(t, batches[0].Errors, 1)
}

func TestQueryWarningsAreNotErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	var stats logbook.StatsResult
	status := getJSON(t, ts.URL+"/api/stats?date_from=2025-02-01&date_to=2025-01-01", &stats)
	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, stats.TotalFlights)
	assert.Nil(t, stats.DateRange)
	assert.Len(t, stats.Warnings, 1)
}

func TestBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"non numeric limit", "/api/flights?limit=ten", http.StatusBadRequest},
		{"bad windows", "/api/rolling?windows=7,x", http.StatusBadRequest},
		{"bad flight id", "/api/flights/abc", http.StatusBadRequest},
		{"unknown flight", "/api/flights/999", http.StatusNotFound},
		{"unknown batch", "/api/batches/nope", http.StatusNotFound},
		{"unknown airport", "/api/airports/kxxx", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			assert.Equal(t, tt.want, getJSON(t, ts.URL+tt.url, &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestImportRejections(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name     string
		filename string
		source   string
	}{
		{"not csv", "book.txt", ""},
		{"unknown source", "book.csv", "navy"},
		{"unregistered source", "book.csv", "usaf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, ts, tt.filename, logbookCSV, tt.source)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := http.Post(ts.URL+"/api/import", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteBatch(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := upload(t, ts, "book.csv", logbookCSV, "manual")
	var report importer.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/batches/"+report.BatchID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(del.Body).Decode(&body))
	assert.Equal(t, float64(2), body["flights_deleted"])

	var flights logbook.FlightsResult
	getJSON(t, ts.URL+"/api/flights", &flights)
	assert.Zero(t, flights.Total)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	var body map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestEventsWebsocket(t *testing.T) {
	ts, hub := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	resp := upload(t, ts, "book.csv", logbookCSV, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e events.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, events.BatchImported, e.Type)
	assert.Equal(t, "book.csv", e.Filename)
	assert.Equal(t, 2, e.Imported)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestExportWorkbook(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := upload(t, ts, "book.csv", logbookCSV, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res, err := http.Get(ts.URL + "/api/export?tail=N1")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "pilotlog.xlsx")

	f, err := excelize.OpenReader(res.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Flights")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
