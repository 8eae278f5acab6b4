package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/zombor/shopping-tracker/internal/scanning"
)

// maxFrameSize bounds a single uploaded frame (high resolution phone photos)
const maxFrameSize = int64(20 << 20)

// handleScanState returns the capture controller state and the ledger total
func (s *Server) handleScanState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"capture": s.capture.Snapshot(),
		"total":   s.ledger.Total(),
		"count":   s.ledger.Len(),
	})
}

// handleStartScan starts a scanning session
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	if err := s.capture.StartScanning(r.Context()); err != nil {
		slog.Error("Error starting scanner", "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.capture.Snapshot())
}

// handleStopScan stops the scanning session
func (s *Server) handleStopScan(w http.ResponseWriter, r *http.Request) {
	if err := s.capture.StopScanning(); err != nil {
		slog.Warn("Error stopping scanner", "error", err)
	}
	writeJSON(w, http.StatusOK, s.capture.Snapshot())
}

// handleUploadFrame queues a camera frame for recognition. The frame is sent
// as multipart field "frame" or as the raw request body.
func (s *Server) handleUploadFrame(w http.ResponseWriter, r *http.Request) {
	if s.frames == nil {
		jsonError(w, "Scanner is not available", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFrameSize)
	frame, err := readFrame(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "Frame is too large. Maximum size is 20MB.", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Error("Error reading frame", "error", err)
		jsonError(w, "No frame provided", http.StatusBadRequest)
		return
	}

	queued := s.frames.Push(frame)
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": queued})
}

func readFrame(r *http.Request) (scanning.Frame, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFrameSize); err != nil {
			return scanning.Frame{}, err
		}
		f, header, err := r.FormFile("frame")
		if err != nil {
			return scanning.Frame{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return scanning.Frame{}, err
		}
		return scanning.Frame{Data: data, ContentType: header.Header.Get("Content-Type")}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return scanning.Frame{}, err
	}
	if len(data) == 0 {
		return scanning.Frame{}, errors.New("empty body")
	}
	return scanning.Frame{Data: data, ContentType: r.Header.Get("Content-Type")}, nil
}

// handleCommitPrice adds the detected price to the ledger
func (s *Server) handleCommitPrice(w http.ResponseWriter, r *http.Request) {
	price, added, err := s.capture.AddCurrentPrice()
	if err != nil {
		writeServiceError(w, "commit price", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added": added,
		"price": price,
		"total": s.ledger.Total(),
	})
}

// handleManualPrice adds a typed price to the ledger
func (s *Server) handleManualPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	price, err := s.capture.AddManualPrice(req.Price)
	if err != nil {
		writeServiceError(w, "manual price", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"price": price,
		"total": s.ledger.Total(),
	})
}

// handleGetLedger returns the ledger entries and total
func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"prices": s.ledger.Entries(),
		"total":  s.ledger.Total(),
	})
}

// handleRemoveLedgerEntry deletes one entry by position
func (s *Server) handleRemoveLedgerEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		corsError(w, "Invalid index", http.StatusBadRequest)
		return
	}
	if err := s.ledger.RemoveAt(index); err != nil {
		writeServiceError(w, "remove ledger entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearLedger empties the ledger and drops the detected price
func (s *Server) handleClearLedger(w http.ResponseWriter, r *http.Request) {
	if err := s.capture.ClearAll(); err != nil {
		writeServiceError(w, "clear ledger", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLedgerSummary returns the shareable text summary
func (s *Server) handleLedgerSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, s.ledger.Summary())
}
