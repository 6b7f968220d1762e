package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/view"
)

const basePath = "/products"

// Handler serves product group and product pages plus the dashboard.
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

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Route("/groups", func(r chi.Router) {
		r.Get("/new", h.GroupForm)
		r.Post("/", h.CreateGroup)
		r.Get("/{groupID}/edit", h.EditGroupForm)
		r.Post("/{groupID}", h.UpdateGroup)
		r.Post("/{groupID}/delete", h.DeleteGroup)

		r.Get("/{groupID}/products/new", h.ProductForm)
		r.Post("/{groupID}/products", h.CreateProduct)
		r.Get("/{groupID}/products/{productID}/edit", h.EditProductForm)
		r.Post("/{groupID}/products/{productID}", h.UpdateProduct)
		r.Post("/{groupID}/products/{productID}/delete", h.DeleteProduct)
	})
}

// Dashboard renders the low-stock summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	data := map[string]any{"Summary": summary}
	if err != nil {
		h.logger.Warn("dashboard refresh failed", slog.Any("error", err))
		data["Error"] = shared.UserSafeMessage(err)
	}
	data["Snapshot"] = h.service.Store().Snapshot()
	h.render(w, r, "pages/home.html", "Dashboard", data, http.StatusOK)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	state := h.service.Groups(r.Context(), search)
	if state.IsError() {
		h.logger.Warn("list product groups failed", slog.String("message", state.Message))
	}
	h.render(w, r, "pages/products/list.html", "Products", map[string]any{
		"State":    state,
		"Search":   search,
		"BasePath": basePath,
	}, http.StatusOK)
}

func (h *Handler) GroupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/products/group_form.html", "Products", map[string]any{
		"Errors": shared.FormErrors{},
		"Input":  GroupInput{},
	}, http.StatusOK)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := GroupInput{Name: r.PostFormValue("name")}

	created, err := h.service.CreateGroup(r.Context(), in)
	if err != nil {
		h.logger.Warn("create product group failed", slog.Any("error", err))
		h.flashFailure(r, err, "Failed to create product group.")
		h.render(w, r, "pages/products/group_form.html", "Products", map[string]any{
			"Errors": shared.FieldErrors(err),
			"Input":  in,
		}, http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Product group \""+created.Name+"\" created.")
}

func (h *Handler) EditGroupForm(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	group, err := h.service.Group(r.Context(), groupID)
	if err != nil {
		h.logger.Warn("get product group failed", slog.Any("error", err), slog.String("group_id", groupID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/products/group_form.html", "Products", map[string]any{
		"Errors": shared.FormErrors{},
		"Group":  group,
		"Input":  GroupInput{Name: group.Name},
	}, http.StatusOK)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := GroupInput{Name: r.PostFormValue("name")}

	if _, err := h.service.UpdateGroup(r.Context(), groupID, in); err != nil {
		h.logger.Warn("update product group failed", slog.Any("error", err), slog.String("group_id", groupID))
		h.flashFailure(r, err, "Failed to update product group.")
		h.render(w, r, "pages/products/group_form.html", "Products", map[string]any{
			"Errors": shared.FieldErrors(err),
			"Group":  Group{ID: groupID, Name: in.Name},
			"Input":  in,
		}, http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Product group updated.")
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.service.DeleteGroup(r.Context(), groupID); err != nil {
		h.logger.Warn("delete product group failed", slog.Any("error", err), slog.String("group_id", groupID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete product group.")
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Product group deleted.")
}

func (h *Handler) ProductForm(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	group, err := h.service.Group(r.Context(), groupID)
	if err != nil {
		h.logger.Warn("get product group failed", slog.Any("error", err), slog.String("group_id", groupID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/products/product_form.html", "Products", map[string]any{
		"Errors": shared.FormErrors{},
		"Group":  group,
		"Input":  ProductInput{},
	}, http.StatusOK)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in, errs := productInputFromForm(r)
	group := Group{ID: groupID, Name: r.PostFormValue("groupName")}
	if len(errs) > 0 {
		h.render(w, r, "pages/products/product_form.html", "Products", map[string]any{
			"Errors": errs, "Group": group, "Input": in,
		}, http.StatusUnprocessableEntity)
		return
	}

	created, err := h.service.CreateProduct(r.Context(), groupID, in)
	if err != nil {
		h.logger.Warn("create product failed", slog.Any("error", err), slog.String("group_id", groupID))
		h.flashFailure(r, err, "Failed to create product.")
		h.render(w, r, "pages/products/product_form.html", "Products", map[string]any{
			"Errors": shared.FieldErrors(err), "Group": group, "Input": in,
		}, http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Product \""+created.Name+"\" created.")
}

func (h *Handler) EditProductForm(w http.ResponseWriter, r *http.Request) {
	groupID, productID := chi.URLParam(r, "groupID"), chi.URLParam(r, "productID")
	group, product, err := h.service.Product(r.Context(), groupID, productID)
	if err != nil {
		h.logger.Warn("get product failed", slog.Any("error", err), slog.String("product_id", productID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/products/product_form.html", "Products", map[string]any{
		"Errors":  shared.FormErrors{},
		"Group":   group,
		"Product": product,
		"Input":   ProductInput{Name: product.Name, Stock: product.Stock, SafetyStock: product.SafetyStock},
	}, http.StatusOK)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	groupID, productID := chi.URLParam(r, "groupID"), chi.URLParam(r, "productID")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in, errs := productInputFromForm(r)
	data := map[string]any{
		"Group":   Group{ID: groupID, Name: r.PostFormValue("groupName")},
		"Product": Product{ID: productID, GroupID: groupID, Name: in.Name},
		"Input":   in,
	}
	if len(errs) > 0 {
		data["Errors"] = errs
		h.render(w, r, "pages/products/product_form.html", "Products", data, http.StatusUnprocessableEntity)
		return
	}

	if _, err := h.service.UpdateProduct(r.Context(), groupID, productID, in); err != nil {
		h.logger.Warn("update product failed", slog.Any("error", err), slog.String("product_id", productID))
		h.flashFailure(r, err, "Failed to update product.")
		data["Errors"] = shared.FieldErrors(err)
		h.render(w, r, "pages/products/product_form.html", "Products", data, http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Product updated.")
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	groupID, productID := chi.URLParam(r, "groupID"), chi.URLParam(r, "productID")
	if err := h.service.DeleteProduct(r.Context(), groupID, productID); err != nil {
		h.logger.Warn("delete product failed", slog.Any("error", err), slog.String("product_id", productID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete product.")
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Product deleted.")
}

// productInputFromForm parses the product form; non-numeric stock values
// come back as field errors.
func productInputFromForm(r *http.Request) (ProductInput, shared.FormErrors) {
	errs := shared.FormErrors{}
	in := ProductInput{Name: r.PostFormValue("name")}
	in.Stock = intField(r, "stock", "Stock", errs)
	in.SafetyStock = intField(r, "safetyStock", "Safety stock", errs)
	return in, errs
}

func intField(r *http.Request, name, label string, errs shared.FormErrors) int {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[name] = label + " must be a whole number"
	}
	return n
}

func (h *Handler) flashFailure(r *http.Request, err error, message string) {
	if !errors.Is(err, shared.ErrValidation) {
		shared.AddFlash(r, shared.FlashError, message)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	if err := h.templates.Render(w, status, template, view.Page(r, h.csrf, title, data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.AddFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
