package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/controlefinanceiro/lancamentos/internal/category"
	"github.com/controlefinanceiro/lancamentos/internal/middleware"
	"github.com/controlefinanceiro/lancamentos/internal/models"
	"github.com/controlefinanceiro/lancamentos/internal/services"
)

const (
	msgKindMismatch  = "O Tipo da categoria não é o mesmo do Lançamento :/"
	msgNoCategory    = "Categoria não encontrada ou serviço de categorias indisponível :/"
	msgDuplicate     = "Lançamento de mesmo nome e vencimento já salvo na base :/"
	msgNotFound      = "Lançamento não encontrado na base :/"
	msgMonthNotFound = "Nenhum lançamento encontrado para o mês :/"
	msgWriteFailed   = "Não foi possível salvar o lançamento :/"
	msgReadFailed    = "Não foi possível consultar a base :/"
)

// CreateEntryRequest is the body of POST /lancamento
type CreateEntryRequest struct {
	Description string  `json:"descricao" validate:"required,max=140"`
	Amount      float64 `json:"valor"`
	Paid        bool    `json:"pago"`
	Kind        string  `json:"tipo" validate:"required,kind"`
	DueDate     *Date   `json:"data_vencimento" validate:"required"`
	CategoryID  int64   `json:"categoria_id" validate:"required,gt=0"`
}

// EditEntryRequest is the body of PUT /lancamento
type EditEntryRequest struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Description string  `json:"descricao" validate:"required,max=140"`
	Amount      float64 `json:"valor"`
	Paid        *bool   `json:"pago,omitempty"`
	Kind        string  `json:"tipo" validate:"required,kind"`
	DueDate     *Date   `json:"data_vencimento" validate:"required"`
	CategoryID  int64   `json:"categoria_id" validate:"required,gt=0"`
}

type EntryHandler struct {
	service   *services.LedgerService
	directory category.Directory
	validator *services.ValidationHelper
}

func NewEntryHandler(service *services.LedgerService, directory category.Directory) *EntryHandler {
	return &EntryHandler{
		service:   service,
		directory: directory,
		validator: services.NewValidationHelper(),
	}
}

// Routes mounts the lançamento endpoints on r
func (h *EntryHandler) Routes(r chi.Router) {
	r.Post("/lancamento", h.AddEntry)
	r.Get("/lancamentos", h.ListEntries)
	r.Get("/lancamento", h.GetEntry)
	r.Get("/mensal", h.ListMonthly)
	r.Get("/saldo", h.GetBalance)
	r.Delete("/lancamento", h.DeleteEntry)
	r.Put("/paga", h.TogglePaid)
	r.Put("/lancamento", h.EditEntry)
}

// decodeBody reads a single JSON object into dst, rejecting unknown fields.
func (h *EntryHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := h.validator.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func queryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid id", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}

// sendServiceError maps ledger errors to status codes. fallback is used for
// errors outside the taxonomy.
func sendServiceError(w http.ResponseWriter, err error, fallback int, fallbackMsg string) {
	switch {
	case errors.Is(err, models.ErrKindMismatch):
		services.SendErrorResponse(w, msgKindMismatch, http.StatusConflict, nil)
	case errors.Is(err, models.ErrCategoryUnresolvable):
		services.SendErrorResponse(w, msgNoCategory, http.StatusConflict, nil)
	case errors.Is(err, models.ErrDuplicate):
		services.SendErrorResponse(w, msgDuplicate, http.StatusConflict, nil)
	case errors.Is(err, models.ErrNotFound):
		services.SendErrorResponse(w, msgNotFound, http.StatusNotFound, nil)
	case errors.Is(err, models.ErrWrite):
		services.SendErrorResponse(w, msgWriteFailed, http.StatusBadRequest, nil)
	default:
		log.Printf("[LEDGER] Unexpected error: %v", err)
		services.SendErrorResponse(w, fallbackMsg, fallback, nil)
	}
}

// AddEntry creates a lançamento
// @Summary Add lançamento
// @Description Adds an entry after checking its kind against the category directory
// @Tags lancamento
// @Accept json
// @Produce json
// @Param request body CreateEntryRequest true "Entry fields"
// @Success 200 {object} EntryView
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /lancamento [post]
func (h *EntryHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	kind, _ := models.ParseKind(req.Kind)
	entry := &models.LedgerEntry{
		Description: req.Description,
		Amount:      req.Amount,
		Paid:        req.Paid,
		Kind:        kind,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate.Time,
		Owner:       middleware.OwnerFromContext(r.Context()),
	}

	if err := h.service.Add(r.Context(), entry); err != nil {
		sendServiceError(w, err, http.StatusBadRequest, msgWriteFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, presentEntry(r.Context(), h.directory, *entry))
}

// ListEntries returns every lançamento
// @Summary List lançamentos
// @Tags lancamento
// @Produce json
// @Success 200 {object} EntryListView
// @Router /lancamentos [get]
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		sendServiceError(w, err, http.StatusInternalServerError, msgReadFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, presentEntries(r.Context(), h.directory, entries))
}

// GetEntry finds a lançamento by exact description
// @Summary Get lançamento by description
// @Tags lancamento
// @Produce json
// @Param descricao query string true "Description"
// @Success 200 {object} EntryView
// @Failure 404 {object} services.ErrorResponse
// @Router /lancamento [get]
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("descricao")
	if strings.TrimSpace(description) == "" {
		services.SendErrorResponse(w, "descricao is required", http.StatusBadRequest, nil)
		return
	}

	entry, err := h.service.FindByDescription(r.Context(), description)
	if err != nil {
		sendServiceError(w, err, http.StatusInternalServerError, msgReadFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, presentEntry(r.Context(), h.directory, *entry))
}

// ListMonthly returns the lançamentos due in the month of data_vencimento
// @Summary List lançamentos of a month
// @Tags lancamento
// @Produce json
// @Param data_vencimento query string true "Any date of the month (YYYY-MM-DD)"
// @Success 200 {object} EntryListView
// @Failure 404 {object} services.ErrorResponse
// @Router /mensal [get]
func (h *EntryHandler) ListMonthly(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDate(r.URL.Query().Get("data_vencimento"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid data_vencimento", http.StatusBadRequest, nil)
		return
	}

	entries, err := h.service.Monthly(r.Context(), date)
	if errors.Is(err, models.ErrNotFound) {
		services.SendErrorResponse(w, msgMonthNotFound, http.StatusNotFound, nil)
		return
	}
	if err != nil {
		sendServiceError(w, err, http.StatusInternalServerError, msgReadFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, presentEntries(r.Context(), h.directory, entries))
}

// GetBalance summarizes the current month, or the month of data_vencimento
// @Summary Monthly balance
// @Tags lancamento
// @Produce json
// @Param data_vencimento query string false "Any date of the month, defaults to today"
// @Success 200 {object} models.Summary
// @Failure 404 {object} services.ErrorResponse
// @Router /saldo [get]
func (h *EntryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	var (
		summary models.Summary
		err     error
	)
	if raw := r.URL.Query().Get("data_vencimento"); raw != "" {
		date, parseErr := ParseDate(raw)
		if parseErr != nil {
			services.SendErrorResponse(w, "Invalid data_vencimento", http.StatusBadRequest, nil)
			return
		}
		summary, err = h.service.Balance(r.Context(), date)
	} else {
		summary, err = h.service.CurrentBalance(r.Context())
	}

	if errors.Is(err, models.ErrNotFound) {
		services.SendErrorResponse(w, msgMonthNotFound, http.StatusNotFound, nil)
		return
	}
	if err != nil {
		sendServiceError(w, err, http.StatusInternalServerError, msgReadFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, summary)
}

// DeleteEntry removes a lançamento by id
// @Summary Delete lançamento
// @Tags lancamento
// @Produce json
// @Param id query int true "Entry id"
// @Success 200 {object} MessageView
// @Failure 404 {object} services.ErrorResponse
// @Router /lancamento [delete]
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Delete(r.Context(), id); err != nil {
		sendServiceError(w, err, http.StatusBadRequest, msgWriteFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, MessageView{Message: "Lançamento removido", ID: id})
}

// TogglePaid flips the paid flag of a lançamento
// @Summary Toggle paid
// @Tags lancamento
// @Produce json
// @Param id query int true "Entry id"
// @Success 200 {object} MessageView
// @Failure 404 {object} services.ErrorResponse
// @Router /paga [put]
func (h *EntryHandler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.TogglePaid(r.Context(), id); err != nil {
		sendServiceError(w, err, http.StatusBadRequest, msgWriteFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, MessageView{Message: "Lançamento atualizado", ID: id})
}

// EditEntry replaces every field of a lançamento
// @Summary Edit lançamento
// @Tags lancamento
// @Accept json
// @Produce json
// @Param request body EditEntryRequest true "Entry id and fields"
// @Success 200 {object} EditView
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /lancamento [put]
func (h *EntryHandler) EditEntry(w http.ResponseWriter, r *http.Request) {
	var req EditEntryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	kind, _ := models.ParseKind(req.Kind)
	entry, err := h.service.Edit(r.Context(), services.EditInput{
		ID:          req.ID,
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        kind,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate.Time,
		Paid:        req.Paid,
	})
	if err != nil {
		sendServiceError(w, err, http.StatusBadRequest, msgWriteFailed)
		return
	}

	services.SendJSON(w, http.StatusOK, EditView{
		Message: "Lançamento atualizado com sucesso",
		Entry:   presentEntry(r.Context(), h.directory, *entry),
	})
}
