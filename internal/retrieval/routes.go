package retrieval

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/httpx"
)

// RegisterRoutes mounts the search API route.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Post("/api/search", handleSearch(engine))
}

type searchRequest struct {
	Query     string `json:"query" validate:"required,max=4000"`
	TopK      int    `json:"topK" validate:"omitempty,min=1,max=50"`
	MaxTokens int    `json:"maxTokens" validate:"omitempty,min=1,max=32000"`
}

type searchResponse struct {
	Results []Result `json:"results"`
	Context string   `json:"context,omitempty"`
}

func handleSearch(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.TopK == 0 {
			req.TopK = 5
		}

		owner := auth.FromContext(r.Context()).UserID
		results, err := engine.Search(r.Context(), owner, req.Query, req.TopK)
		if err != nil {
			httpx.WriteError(w, http.StatusBadGateway, err.Error())
			return
		}
		for i := range results {
			results[i].Chunk.Embedding = nil
		}

		resp := searchResponse{Results: results}
		if req.MaxTokens > 0 {
			resp.Context = FormatContext(results, req.MaxTokens)
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
