package api

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"kleiderkammer/internal/model"
	"kleiderkammer/internal/store"
)

// ArticlesHandler handles article lifecycle endpoints.
type ArticlesHandler struct {
	DB *sql.DB
}

type createArticleRequest struct {
	ID                   string  `json:"id"`
	Category             string  `json:"category"`
	Label                string  `json:"label"`
	Size                 *string `json:"size"`
	Notes                *string `json:"notes"`
	Target               string  `json:"target"`
	PersonID             *int64  `json:"personId"`
	ExpiryDate           *string `json:"expiryDate"`
	HelmetManufacturedAt *string `json:"helmetManufacturedAt"`
}

// updateArticleRequest uses pointer fields so absent and empty values can
// be told apart: absent fields stay untouched, empty strings clear.
type updateArticleRequest struct {
	Category             *string `json:"category"`
	Label                *string `json:"label"`
	Size                 *string `json:"size"`
	ExpiryDate           *string `json:"expiryDate"`
	HelmetNextCheck      *string `json:"helmetNextCheck"`
	HelmetLastCheck      *string `json:"helmetLastCheck"`
	HelmetManufacturedAt *string `json:"helmetManufacturedAt"`
	Note                 *string `json:"note"`
}

type assignArticleRequest struct {
	Target   string `json:"target"`
	PersonID *int64 `json:"personId"`
}

type helmetCheckRequest struct {
	Date *string `json:"date"`
}

// List handles GET /api/articles. The assignedOnly query parameter limits
// the listing to articles currently issued to a person.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	assignedOnly := r.URL.Query().Get("assignedOnly") == "true"

	articles, err := store.ListArticles(r.Context(), h.DB, assignedOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	jsonResponse(w, http.StatusOK, articles)
}

// Create handles POST /api/articles.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target := req.Target
	if target == "" {
		target = model.LocationStorage
	}

	article, err := store.CreateArticle(r.Context(), h.DB, store.CreateArticleParams{
		ID:                   req.ID,
		Category:             req.Category,
		Label:                req.Label,
		Size:                 req.Size,
		Notes:                req.Notes,
		LocationType:         target,
		PersonID:             req.PersonID,
		ExpiryDate:           req.ExpiryDate,
		HelmetManufacturedAt: req.HelmetManufacturedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, article)
}

// Get handles GET /api/articles/{id}.
func (h *ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := store.GetArticle(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, article)
}

// Update handles PATCH /api/articles/{id}.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := store.UpdateArticle(r.Context(), h.DB, r.PathValue("id"), store.ArticleChanges{
		Category:             req.Category,
		Label:                req.Label,
		Size:                 req.Size,
		ExpiryDate:           req.ExpiryDate,
		HelmetNextCheck:      req.HelmetNextCheck,
		HelmetLastCheck:      req.HelmetLastCheck,
		HelmetManufacturedAt: req.HelmetManufacturedAt,
	}, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, article)
}

// Assign handles PATCH /api/articles/{id}/assignment.
func (h *ArticlesHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := store.AssignArticle(r.Context(), h.DB, r.PathValue("id"), req.Target, req.PersonID)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, article)
}

// HelmetCheck handles POST /api/articles/{id}/helmet-check.
func (h *ArticlesHandler) HelmetCheck(w http.ResponseWriter, r *http.Request) {
	// The body is optional; chunked requests report no content length, so
	// decode regardless and treat an immediate EOF as an empty body.
	var req helmetCheckRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := store.CompleteHelmetCheck(r.Context(), h.DB, r.PathValue("id"), req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, article)
}

// Delete handles DELETE /api/articles/{id}, retiring the article.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.NormalizeArticleID(r.PathValue("id"))
	if err := store.RetireArticle(r.Context(), h.DB, id); err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}
