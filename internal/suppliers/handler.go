package suppliers

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
	"github.com/odyssey-erp/inventory-admin/internal/view"
)

const basePath = "/suppliers"

// Catalog lists the products a supplier can be linked to.
type Catalog interface {
	Products(ctx context.Context) ([]products.Item, error)
}

// Handler serves the supplier pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	catalog   Catalog
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, catalog Catalog, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalog, templates: templates, csrf: csrf}
}

// MountRoutes registers supplier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	showDeleted, _ := strconv.ParseBool(r.URL.Query().Get("showDeleted"))
	state := h.service.List(r.Context(), showDeleted)
	if state.IsError() {
		h.logger.Warn("list suppliers failed", slog.String("message", state.Message))
	}
	h.render(w, r, "pages/suppliers/list.html", map[string]any{
		"State":       state,
		"ShowDeleted": showDeleted,
		"BasePath":    basePath,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil, Input{}, shared.FormErrors{}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in, errs := inputFromForm(r)
	if len(errs) > 0 {
		h.renderForm(w, r, nil, in, errs, http.StatusUnprocessableEntity)
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create supplier failed", slog.Any("error", err))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to create supplier.")
		}
		h.renderForm(w, r, nil, in, shared.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Supplier \""+created.Name+"\" created.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("get supplier failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	in := Input{Name: sup.Name, LeadTime: sup.LeadTime}
	for _, p := range sup.Products {
		in.ProductIDs = append(in.ProductIDs, p.ID)
	}
	h.renderForm(w, r, &sup, in, shared.FormErrors{}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in, errs := inputFromForm(r)
	current := &Supplier{ID: id, Name: in.Name}
	if len(errs) > 0 {
		h.renderForm(w, r, current, in, errs, http.StatusUnprocessableEntity)
		return
	}

	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		h.logger.Warn("update supplier failed", slog.Any("error", err), slog.String("id", id))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to update supplier.")
		}
		h.renderForm(w, r, current, in, shared.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Supplier updated.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete supplier failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete supplier.")
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Supplier deleted.")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, sup *Supplier, in Input, errs shared.FormErrors, status int) {
	items, err := h.catalog.Products(r.Context())
	if err != nil {
		h.logger.Warn("load product catalog failed", slog.Any("error", err))
		if _, ok := errs["productIds"]; !ok {
			errs["productIds"] = "Products could not be loaded: " + shared.UserSafeMessage(err)
		}
	}
	selected := make(map[string]bool, len(in.ProductIDs))
	for _, id := range in.ProductIDs {
		selected[id] = true
	}
	data := map[string]any{
		"Errors":   errs,
		"Input":    in,
		"Products": items,
		"Selected": selected,
	}
	if sup != nil {
		data["Supplier"] = *sup
	}
	h.render(w, r, "pages/suppliers/form.html", data, status)
}

func inputFromForm(r *http.Request) (Input, shared.FormErrors) {
	errs := shared.FormErrors{}
	in := Input{Name: r.PostFormValue("name"), ProductIDs: r.PostForm["productIds"]}
	if raw := strings.TrimSpace(r.PostFormValue("leadTime")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["leadTime"] = "Lead time must be a whole number of days"
		}
		in.LeadTime = n
	}
	return in, errs
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	if err := h.templates.Render(w, status, template, view.Page(r, h.csrf, "Suppliers", data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.AddFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
