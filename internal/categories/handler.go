package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/view"
)

const basePath = "/categories"

// Handler serves the category pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	state, pagination := h.service.Page(r.Context(), search, page)
	if state.IsError() {
		h.logger.Warn("list categories failed", slog.String("message", state.Message))
	}

	h.render(w, r, "pages/categories/list.html", map[string]any{
		"State":      state,
		"Pagination": pagination,
		"Search":     search,
		"BasePath":   basePath,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/categories/form.html", map[string]any{
		"Errors": shared.FormErrors{},
		"Input":  Input{},
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := inputFromForm(r)

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create category failed", slog.Any("error", err))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to create category.")
		}
		h.render(w, r, "pages/categories/form.html", map[string]any{
			"Errors": shared.FieldErrors(err),
			"Input":  in,
		}, http.StatusUnprocessableEntity)
		return
	}

	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Category \""+created.Name+"\" created.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("get category failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}

	h.render(w, r, "pages/categories/form.html", map[string]any{
		"Errors":   shared.FormErrors{},
		"Category": category,
		"Input":    Input{Name: category.Name, Description: category.Description},
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := inputFromForm(r)

	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		h.logger.Warn("update category failed", slog.Any("error", err), slog.String("id", id))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to update category.")
		}
		h.render(w, r, "pages/categories/form.html", map[string]any{
			"Errors":   shared.FieldErrors(err),
			"Category": Category{ID: id, Name: in.Name, Description: in.Description},
			"Input":    in,
		}, http.StatusUnprocessableEntity)
		return
	}

	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Category updated.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete category failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete category.")
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Category deleted.")
}

func inputFromForm(r *http.Request) Input {
	return Input{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	if err := h.templates.Render(w, status, template, view.Page(r, h.csrf, "Categories", data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.AddFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
