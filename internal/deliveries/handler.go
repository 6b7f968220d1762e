package deliveries

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/inventory-admin/internal/products"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/suppliers"
	"github.com/odyssey-erp/inventory-admin/internal/view"
)

const (
	basePath = "/deliveries"
	formRows = 5
)

// SupplierSource lists suppliers that can receive a delivery.
type SupplierSource interface {
	Active(ctx context.Context) ([]suppliers.Supplier, error)
}

// Catalog lists products that can be ordered.
type Catalog interface {
	Products(ctx context.Context) ([]products.Item, error)
}

// Handler serves the delivery pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	suppliers SupplierSource
	catalog   Catalog
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, suppliers SupplierSource, catalog Catalog, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, suppliers: suppliers, catalog: catalog, templates: templates, csrf: csrf}
}

// MountRoutes registers delivery routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Reschedule)
	r.Post("/{id}/status", h.Transition)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	state := h.service.List(r.Context(), status)
	if state.IsError() {
		h.logger.Warn("list deliveries failed", slog.String("message", state.Message))
	}
	h.render(w, r, "pages/deliveries/list.html", map[string]any{
		"State":    state,
		"Status":   string(status),
		"Statuses": []Status{StatusPending, StatusCompleted, StatusCancelled},
		"BasePath": basePath,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, CreateInput{}, shared.FormErrors{}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in, errs := createInputFromForm(r)
	if len(errs) > 0 {
		h.renderForm(w, r, in, errs, http.StatusUnprocessableEntity)
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create delivery failed", slog.Any("error", err))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to create delivery.")
		}
		h.renderForm(w, r, in, shared.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}
	h.logger.Info("delivery scheduled", slog.String("id", created.ID), slog.Int("items", len(created.Items)))
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Delivery scheduled.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("get delivery failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/deliveries/edit.html", map[string]any{
		"Errors":   shared.FormErrors{},
		"Delivery": d,
		"Input":    ScheduleInput{ScheduledArrivalDate: d.ScheduledArrivalDate.Format("2006-01-02")},
	}, http.StatusOK)
}

func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := ScheduleInput{ScheduledArrivalDate: r.PostFormValue("scheduledArrivalDate")}

	if _, err := h.service.Reschedule(r.Context(), id, in); err != nil {
		h.logger.Warn("reschedule delivery failed", slog.Any("error", err), slog.String("id", id))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to update delivery.")
		}
		h.render(w, r, "pages/deliveries/edit.html", map[string]any{
			"Errors":   shared.FieldErrors(err),
			"Delivery": Delivery{ID: id},
			"Input":    in,
		}, http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Delivery rescheduled.")
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	to := Status(r.PostFormValue("status"))

	if _, err := h.service.Transition(r.Context(), id, to); err != nil {
		h.logger.Warn("delivery transition failed", slog.Any("error", err), slog.String("id", id), slog.String("to", string(to)))
		message := "Failed to update delivery."
		if errors.Is(err, ErrInvalidTransition) {
			message = "Only pending deliveries can be completed or cancelled."
		}
		h.redirectWithFlash(w, r, basePath, shared.FlashError, message)
		return
	}
	message := "Delivery marked as completed."
	if to == StatusCancelled {
		message = "Delivery cancelled."
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, message)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete delivery failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete delivery.")
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Delivery deleted.")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, in CreateInput, errs shared.FormErrors, status int) {
	sups, err := h.suppliers.Active(r.Context())
	if err != nil {
		h.logger.Warn("load suppliers failed", slog.Any("error", err))
		errs["supplierId"] = "Suppliers could not be loaded: " + shared.UserSafeMessage(err)
	}
	items, err := h.catalog.Products(r.Context())
	if err != nil {
		h.logger.Warn("load product catalog failed", slog.Any("error", err))
		errs["items"] = "Products could not be loaded: " + shared.UserSafeMessage(err)
	}

	rows := make([]ItemInput, max(formRows, len(in.Items)))
	copy(rows, in.Items)
	h.render(w, r, "pages/deliveries/form.html", map[string]any{
		"Errors":    errs,
		"Input":     in,
		"Rows":      rows,
		"Suppliers": sups,
		"Products":  items,
	}, status)
}

// createInputFromForm reads the supplier, date and the parallel productId
// and quantity columns. Blank rows are dropped.
func createInputFromForm(r *http.Request) (CreateInput, shared.FormErrors) {
	errs := shared.FormErrors{}
	in := CreateInput{
		SupplierID:           r.PostFormValue("supplierId"),
		ScheduledArrivalDate: r.PostFormValue("scheduledArrivalDate"),
	}
	productIDs := r.PostForm["productId"]
	quantities := r.PostForm["quantity"]
	for i, productID := range productIDs {
		var rawQty string
		if i < len(quantities) {
			rawQty = strings.TrimSpace(quantities[i])
		}
		if strings.TrimSpace(productID) == "" && rawQty == "" {
			continue
		}
		qty, err := strconv.Atoi(rawQty)
		if err != nil {
			errs["quantity"] = "Quantity must be a whole number"
		}
		in.Items = append(in.Items, ItemInput{ProductID: productID, Quantity: qty})
	}
	return in, errs
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	if err := h.templates.Render(w, status, template, view.Page(r, h.csrf, "Deliveries", data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.AddFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
