package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"kleiderkammer/internal/model"
	"kleiderkammer/internal/store"
)

// PersonsHandler handles the /api/children endpoints.
type PersonsHandler struct {
	DB *sql.DB
}

type createPersonRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type updatePersonRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Status    *string `json:"status"`
}

func personID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// List handles GET /api/children.
func (h *PersonsHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := store.ListPersons(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if persons == nil {
		persons = []model.Person{}
	}
	jsonResponse(w, http.StatusOK, persons)
}

// Create handles POST /api/children.
func (h *PersonsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	person, err := store.CreatePerson(r.Context(), h.DB, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, person)
}

// Get handles GET /api/children/{id}.
func (h *PersonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	person, err := store.GetPerson(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, person)
}

// Update handles PATCH /api/children/{id}.
func (h *PersonsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	var req updatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	person, err := store.UpdatePerson(r.Context(), h.DB, id, store.PersonChanges{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Status:    req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, person)
}

// Delete handles DELETE /api/children/{id}. Fails with a conflict while the
// person still holds articles.
func (h *PersonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	if err := store.DeletePerson(r.Context(), h.DB, id); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

// Articles handles GET /api/children/{id}/articles.
func (h *PersonsHandler) Articles(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	articles, err := store.ListPersonArticles(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	jsonResponse(w, http.StatusOK, articles)
}
