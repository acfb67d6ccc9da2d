package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kontor/internal/core"
	"kontor/internal/services"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, clients)
}

type createClientRequest struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
}

// handleCreateClient registers a client ahead of invoicing, returning the
// allocated Kundennummer.
func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	client, created, err := s.composer.RegisterClient(r.Context(), services.ComposeRequest{
		ClientName: req.Name,
		Street:     req.Street,
		City:       req.City,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(r.Context(), w, status, client)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	invoices, err := s.invoices.ListInvoices(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, invoices)
}

type composeInvoiceRequest struct {
	ClientNumber  string          `json:"clientNumber"`
	NewClient     bool            `json:"newClient"`
	ClientName    string          `json:"clientName"`
	Street        string          `json:"street"`
	City          string          `json:"city"`
	Items         []lineItemInput `json:"items"`
	IssueDate     string          `json:"issueDate"`
	PeriodStart   string          `json:"periodStart"`
	PeriodEnd     string          `json:"periodEnd"`
	PaymentMethod string          `json:"paymentMethod"`
}

// lineItemInput takes the unit price as a JSON number or a dot-decimal
// string; decimal.Decimal unmarshals both. German comma notation lives in
// the sheet, not on the wire.
type lineItemInput struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

const requestDateLayout = "2006-01-02"

func (req composeInvoiceRequest) toService() (services.ComposeRequest, error) {
	issue, err := time.Parse(requestDateLayout, req.IssueDate)
	if err != nil {
		return services.ComposeRequest{}, fmt.Errorf("invalid issueDate %q", req.IssueDate)
	}
	start, err := time.Parse(requestDateLayout, req.PeriodStart)
	if err != nil {
		return services.ComposeRequest{}, fmt.Errorf("invalid periodStart %q", req.PeriodStart)
	}
	end, err := time.Parse(requestDateLayout, req.PeriodEnd)
	if err != nil {
		return services.ComposeRequest{}, fmt.Errorf("invalid periodEnd %q", req.PeriodEnd)
	}

	items := make([]core.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, core.LineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return services.ComposeRequest{
		ClientNumber:  req.ClientNumber,
		NewClient:     req.NewClient,
		ClientName:    req.ClientName,
		Street:        req.Street,
		City:          req.City,
		Items:         items,
		IssueDate:     issue,
		PeriodStart:   start,
		PeriodEnd:     end,
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
	}, nil
}

// handleComposeInvoice runs the full issue flow and reports the allocated
// number and the stored document link.
func (s *Server) handleComposeInvoice(w http.ResponseWriter, r *http.Request) {
	var req composeInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	svcReq, err := req.toService()
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	// The composer budgets each upstream call on its own; no outer deadline.
	res, err := s.composer.Compose(r.Context(), svcReq)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, res)
}

func (s *Server) handleNextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	number, err := s.allocator.NextInvoiceNumber(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"nextNumber": number})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	expenses, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, expenses)
}
