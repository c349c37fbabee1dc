package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vanshika/soltrace/internal/domain"
	"github.com/vanshika/soltrace/internal/service"
	"github.com/vanshika/soltrace/internal/solana"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.TraceService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.TraceService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

func (h *APIHandlers) handleTrace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload traceRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Address1 == "" || payload.Address2 == "" {
		writeError(w, http.StatusBadRequest, "address1 and address2 are required")
		return
	}
	if payload.MaxDepth < 0 {
		writeError(w, http.StatusBadRequest, "maxDepth must not be negative")
		return
	}

	report, err := h.service.Trace(r.Context(), service.TraceRequest{
		Address1: payload.Address1,
		Address2: payload.Address2,
		MaxDepth: payload.MaxDepth,
	})
	if err != nil {
		if errors.Is(err, solana.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("trace failed", "error", err, "address1", payload.Address1, "address2", payload.Address2)
		writeError(w, http.StatusBadGateway, "failed to retrieve transaction history")
		return
	}

	respondJSON(w, http.StatusOK, newTraceResponse(report))
}

// --- Request & Response DTOs ---

type traceRequest struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	MaxDepth int    `json:"maxDepth"`
}

type traceResponse struct {
	Address1         string     `json:"address1"`
	Address2         string     `json:"address2"`
	SignatureCount1  int        `json:"signatureCount1"`
	SignatureCount2  int        `json:"signatureCount2"`
	UniqueSignatures int        `json:"uniqueSignatures"`
	RecordsFetched   int        `json:"recordsFetched"`
	RecordsSkipped   int        `json:"recordsSkipped"`
	GraphNodes       int        `json:"graphNodes"`
	MaxDepth         int        `json:"maxDepth"`
	PathCount        int        `json:"pathCount"`
	Paths            [][]string `json:"paths"`
	ElapsedMs        int64      `json:"elapsedMs"`
}

func newTraceResponse(report domain.TraceReport) traceResponse {
	paths := make([][]string, 0, len(report.Paths))
	for _, path := range report.Paths {
		paths = append(paths, append([]string(nil), path...))
	}

	return traceResponse{
		Address1:         report.Address1,
		Address2:         report.Address2,
		SignatureCount1:  report.SignatureCount1,
		SignatureCount2:  report.SignatureCount2,
		UniqueSignatures: report.UniqueSignatures,
		RecordsFetched:   report.RecordsFetched,
		RecordsSkipped:   report.RecordsSkipped,
		GraphNodes:       report.GraphNodes,
		MaxDepth:         report.MaxDepth,
		PathCount:        len(paths),
		Paths:            paths,
		ElapsedMs:        report.Elapsed.Milliseconds(),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
