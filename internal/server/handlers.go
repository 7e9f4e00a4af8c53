package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/balkashynov/pilotlog/internal/db"
	"github.com/balkashynov/pilotlog/internal/export"
	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a service error to a status code
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var formatErr *importer.FormatError
	switch {
	case errors.As(err, &formatErr), errors.Is(err, importer.ErrUnknownSource):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, logbook.ErrBatchNotFound), errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseInt(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func parseQuery(r *http.Request) (logbook.Query, error) {
	v := r.URL.Query()
	q := logbook.Query{
		DateFrom:     v.Get("date_from"),
		DateTo:       v.Get("date_to"),
		Origin:       v.Get("origin"),
		Destination:  v.Get("destination"),
		Airport:      v.Get("airport"),
		Crew:         v.Get("crew"),
		Tail:         v.Get("tail"),
		AircraftType: v.Get("aircraft_type"),
	}
	var err error
	if q.Limit, err = parseInt(v, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = parseInt(v, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func parseWindows(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var windows []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("windows must be a comma separated list of days")
		}
		windows = append(windows, n)
	}
	return windows, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Flights(r.Context(), q, r.URL.Query().Get("attributes") == "true")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFlight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "flight id must be a positive integer")
		return
	}
	flight, err := s.svc.Flight(r.Context(), uint(id))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Stats(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRolling(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	windows, err := parseWindows(v.Get("windows"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Rolling(r.Context(), v.Get("as_of"), windows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Routes(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Map(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "only .csv files can be imported")
		return
	}

	source := s.defaultSource
	if raw := r.FormValue("source"); raw != "" {
		if source, err = models.ParseSource(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	report, err := s.svc.ImportFile(r.Context(), filepath.Base(header.Filename), data, source)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := s.svc.Airports(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if airports == nil {
		airports = []models.Airport{}
	}
	writeJSON(w, http.StatusOK, airports)
}

func (s *Server) handleAirport(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")
	airport, err := s.svc.Airport(r.Context(), icao)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if airport == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("airport %s not found", strings.ToUpper(icao)))
		return
	}
	writeJSON(w, http.StatusOK, airport)
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.svc.Batches(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if batches == nil {
		batches = []models.ImportBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := s.svc.Batch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.svc.DeleteBatch(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id":        id,
		"flights_deleted": deleted,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	wb, warnings, err := s.svc.Workbook(r.Context(), q, r.URL.Query().Get("as_of"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, warning := range warnings {
		w.Header().Add("X-Warning", warning)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pilotlog.xlsx"`)
	if err := export.Write(w, *wb); err != nil {
		s.logger.Error("export failed", "error", err)
	}
}
