package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/internal/service"
	"github.com/utafrali/searchapp/pkg/httputil"
	"github.com/utafrali/searchapp/pkg/validator"
)

// DefaultCount is used when the request has no count parameter.
const DefaultCount = 10

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// SearchRequest holds the validated query parameters. Count has no upper
// bound here; the service caps it at its configured maximum.
type SearchRequest struct {
	Query string `json:"q" validate:"required,max=256"`
	Count int    `json:"count" validate:"gte=0"`
}

// SearchResponse is the data payload of a successful search.
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// Search handles GET /api/v1/search?q=<term>&count=<n>
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := SearchRequest{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Count: DefaultCount,
	}

	if v := r.URL.Query().Get("count"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteBadParameter(w, "count must be an integer")
			return
		}
		req.Count = count
	}

	if err := validator.Validate(&req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	results, err := h.service.Search(r.Context(), req.Query, req.Count)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: SearchResponse{
			Results: results,
			Count:   len(results),
		},
	})
}
