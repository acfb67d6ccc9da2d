package http

import (
	"net/http"

	"kontor/internal/core"
)

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	contacts, err := s.registry.ListContacts(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, contacts)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var contact core.Contact
	if err := decodeJSON(r, &contact); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	created, err := s.registry.CreateContact(ctx, contact)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var patch core.Contact
	if err := decodeJSON(r, &patch); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	updated, err := s.registry.UpdateContact(ctx, r.PathValue("id"), patch)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, updated)
}

func (s *Server) handleListTrackedInvoices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	invoices, err := s.registry.ListTrackedInvoices(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, invoices)
}

func (s *Server) handleCreateTrackedInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.TrackedInvoice
	if err := decodeJSON(r, &inv); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	created, err := s.registry.CreateTrackedInvoice(ctx, inv)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

type statusPatch struct {
	Status core.InvoiceStatus `json:"status"`
}

func (s *Server) handleUpdateTrackedInvoice(w http.ResponseWriter, r *http.Request) {
	var patch statusPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	updated, err := s.registry.SetInvoiceStatus(ctx, r.PathValue("id"), patch.Status)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, updated)
}
