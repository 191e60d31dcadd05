package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"rollcall/internal/domain/selection"
)

func newSelectionView(id string, set selection.Set) selectionView {
	return selectionView{ID: id, EventIDs: set.IDs(), AllEvents: set.IsEmpty()}
}

// unknownEvents returns the ids the event store does not know.
func unknownEvents(ctx context.Context, ids []string) ([]string, error) {
	var unknown []string
	for _, id := range ids {
		if _, err := stores.EventStore.GetByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				unknown = append(unknown, id)
				continue
			}
			return nil, err
		}
	}
	return unknown, nil
}

type selectionBody struct {
	EventIDs []string `json:"event_ids"`
}

// decodeEventIDs reads {"event_ids": [...]} and rejects unknown events.
// An empty body or list means no explicit selection.
func decodeEventIDs(w http.ResponseWriter, r *http.Request) ([]string, int, error) {
	var body selectionBody
	if r.ContentLength != 0 {
		if err := strictDecode(w, r, &body); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid JSON body")
		}
	}
	unknown, err := unknownEvents(r.Context(), body.EventIDs)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if len(unknown) > 0 {
		return nil, http.StatusUnprocessableEntity, fmt.Errorf("unknown events: %s", strings.Join(unknown, ", "))
	}
	return body.EventIDs, http.StatusOK, nil
}

// handleCreateSelection handles POST /api/selections.
func handleCreateSelection(w http.ResponseWriter, r *http.Request) {
	ids, status, err := decodeEventIDs(w, r)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	id, set := selections.Create(ids)
	w.Header().Set("Location", "/api/selections/"+id)
	writeJSON(w, http.StatusCreated, newSelectionView(id, set))
}

// handleGetSelection handles GET /api/selections/{id}.
func handleGetSelection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	set, ok := selections.Get(id)
	if !ok {
		http.Error(w, errSelectionNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSelectionView(id, set))
}

// handleReplaceSelection handles PUT /api/selections/{id}.
// The body's event_ids become the whole selection; an empty list clears it.
func handleReplaceSelection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := selections.Get(id); !ok {
		http.Error(w, errSelectionNotFound.Error(), http.StatusNotFound)
		return
	}
	ids, status, err := decodeEventIDs(w, r)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	set, ok := selections.Replace(id, ids)
	if !ok {
		http.Error(w, errSelectionNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSelectionView(id, set))
}

// handleDeleteSelection handles DELETE /api/selections/{id}.
func handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	if !selections.Delete(r.PathValue("id")) {
		http.Error(w, errSelectionNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleBody struct {
	EventID string `json:"event_id"`
}

// handleToggleSelection handles POST /api/selections/{id}/toggle.
func handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := selections.Get(id); !ok {
		http.Error(w, errSelectionNotFound.Error(), http.StatusNotFound)
		return
	}
	var body toggleBody
	if err := strictDecode(w, r, &body); err != nil || strings.TrimSpace(body.EventID) == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}
	unknown, err := unknownEvents(r.Context(), []string{body.EventID})
	if err != nil {
		internalError(w, err)
		return
	}
	if len(unknown) > 0 {
		http.Error(w, "unknown event: "+body.EventID, http.StatusUnprocessableEntity)
		return
	}
	set, ok := selections.Toggle(id, body.EventID)
	if !ok {
		http.Error(w, errSelectionNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSelectionView(id, set))
}
