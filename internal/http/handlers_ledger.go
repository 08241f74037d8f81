package http

import (
	"errors"
	"net/http"
	"time"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

type registerUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createListRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	DueDate string `json:"due_date"` // YYYY-MM-DD
}

type addItemRequest struct {
	OwnerID  string `json:"owner_id"`
	Name     string `json:"name"`
	Value    string `json:"value"` // decimal, dot or comma separator
	Category string `json:"category"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type listResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	DueDate   string `json:"due_date"`
	CreatedAt string `json:"created_at"`
}

type itemResponse struct {
	ID         string `json:"id"`
	ListID     string `json:"list_id"`
	Name       string `json:"name"`
	ValueCents int64  `json:"value_cents"`
	Value      string `json:"value"`
	Category   string `json:"category"`
	CreatedAt  string `json:"created_at"`
}

type listDetailResponse struct {
	listResponse
	Items []itemResponse `json:"items"`
	Total itemTotal      `json:"total"`
}

type itemTotal struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

func toListResponse(l core.ExpenseList) listResponse {
	return listResponse{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		Name:      l.Name,
		DueDate:   l.DueDate.Format("2006-01-02"),
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
}

func toItemResponse(it core.Item) itemResponse {
	return itemResponse{
		ID:         it.ID,
		ListID:     it.ListID,
		Name:       it.Name,
		ValueCents: it.Value.Cents,
		Value:      it.Value.BRL(),
		Category:   string(it.Category),
		CreatedAt:  it.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u := core.User{
		ID:    sanitizeInput(req.ID),
		Name:  sanitizeInput(req.Name),
		Email: sanitizeInput(req.Email),
	}
	if u.ID == "" {
		respondError(w, http.StatusUnprocessableEntity, "user id is required")
		return
	}

	if err := s.writer.RegisterUser(r.Context(), u); err != nil {
		s.logger.ErrorContext(r.Context(), "register user failed",
			log.FieldOwnerID, u.ID, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not register user")
		return
	}

	respondJSON(w, http.StatusCreated, createdResponse{ID: u.ID})
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dueDate, err := core.ParseCalendarDay(sanitizeInput(req.DueDate), s.loc)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "due_date must be YYYY-MM-DD")
		return
	}

	l := core.ExpenseList{
		OwnerID: sanitizeInput(req.OwnerID),
		Name:    sanitizeInput(req.Name),
		DueDate: dueDate,
	}
	if err := l.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.writer.CreateList(r.Context(), l)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "create list failed",
			log.FieldOwnerID, l.OwnerID, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not create list")
		return
	}

	s.invalidateSummary(l.OwnerID, core.CurrentMonth(l.DueDate.Time, s.loc))
	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	listID := r.PathValue("listID")

	list, err := s.reader.GetList(r.Context(), listID)
	if err != nil || list.OwnerID != owner {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.ErrorContext(r.Context(), "load list failed",
				log.FieldListID, listID, log.FieldError, err)
			respondError(w, http.StatusInternalServerError, "could not load list")
			return
		}
		respondError(w, http.StatusNotFound, "list not found")
		return
	}

	items, err := s.reader.ItemsByList(r.Context(), listID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "load list items failed",
			log.FieldListID, listID, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not load list items")
		return
	}

	resp := listDetailResponse{
		listResponse: toListResponse(list),
		Items:        make([]itemResponse, 0, len(items)),
	}
	total := core.ListTotal(items)
	resp.Total = itemTotal{Cents: total.Cents, Display: total.BRL()}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	listID := r.PathValue("listID")

	if err := s.writer.DeleteList(r.Context(), owner, listID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "list not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "delete list failed",
			log.FieldListID, listID, log.FieldOwnerID, owner, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not delete list")
		return
	}

	s.invalidateSummary(owner)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	owner := sanitizeInput(req.OwnerID)
	if owner == "" {
		respondError(w, http.StatusUnprocessableEntity, "owner_id is required")
		return
	}

	cents, err := core.ParseDecimalToCents(sanitizeInput(req.Value))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}

	it := core.Item{
		ListID:   r.PathValue("listID"),
		Name:     sanitizeInput(req.Name),
		Value:    core.Money{Cents: cents},
		Category: core.ParseCategory(req.Category),
	}
	if err := it.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.writer.AddItem(r.Context(), owner, it)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "list not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "add item failed",
			log.FieldListID, it.ListID, log.FieldOwnerID, owner, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not add item")
		return
	}

	s.invalidateSummary(owner)
	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	listID := r.PathValue("listID")

	list, err := s.reader.GetList(r.Context(), listID)
	if err != nil || list.OwnerID != owner {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.ErrorContext(r.Context(), "load list failed",
				log.FieldListID, listID, log.FieldError, err)
			respondError(w, http.StatusInternalServerError, "could not load list")
			return
		}
		respondError(w, http.StatusNotFound, "list not found")
		return
	}

	items, err := s.reader.ItemsByList(r.Context(), listID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "load list items failed",
			log.FieldListID, listID, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not load list items")
		return
	}

	resp := make([]itemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, toItemResponse(it))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	listID := r.PathValue("listID")
	itemID := r.PathValue("itemID")

	if err := s.writer.DeleteItem(r.Context(), owner, listID, itemID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "delete item failed",
			log.FieldListID, listID, log.FieldItemID, itemID, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not delete item")
		return
	}

	s.invalidateSummary(owner)
	respondJSON(w, http.StatusNoContent, nil)
}
