package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/orchestrator"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	logger       *zap.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		logger:       logger,
	}
}

// Query serves the stock query endpoint. The term travels in the POST body
// (bot integrations) or the "term" query parameter (manual GETs); view,
// paging and refresh always come from the query string.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)

	req, err := h.parseQueryRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.RequestID = requestID

	resp, err := h.orchestrator.Query(ctx, req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrTermMissing) {
			h.writeError(w, http.StatusBadRequest, "term missing")
			return
		}
		h.logger.Error("query failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) parseQueryRequest(r *http.Request) (*models.QueryRequest, error) {
	req := &models.QueryRequest{}

	if r.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
		if err != nil {
			return nil, errors.New("reading request body failed")
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, req); err != nil {
				return nil, errors.New("invalid JSON body")
			}
		}
	}

	q := r.URL.Query()
	if req.Term == "" {
		req.Term = q.Get("term")
	}
	if v := q.Get("view"); v != "" {
		req.View = v
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("limit must be an integer")
		}
		req.Limit = n
	}
	if v := q.Get("cursor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("cursor must be an integer")
		}
		req.Cursor = n
	}
	if q.Get("refresh") == "1" {
		req.Refresh = true
	}

	return req, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("writing response failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
