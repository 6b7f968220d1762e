package sales

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

const basePath = "/sales"

// Handler serves the sales pages.
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

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{groupID}/{productID}/{saleID}/edit", h.EditForm)
	r.Post("/{groupID}/{productID}/{saleID}", h.Update)
	r.Post("/{groupID}/{productID}/{saleID}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	productID := q.Get("product")
	page, _ := strconv.Atoi(q.Get("page"))

	listing := h.service.Page(r.Context(), productID, search, page)
	if listing.State.IsError() {
		h.logger.Warn("list sales failed", slog.String("message", listing.State.Message))
	}

	h.render(w, r, "pages/sales/list.html", map[string]any{
		"State":      listing.State,
		"Pagination": listing.Pagination,
		"Search":     search,
		"Product":    productID,
		"Products":   listing.Products,
		"BasePath":   basePath,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	target := Target{ProductID: r.URL.Query().Get("product")}
	h.renderForm(w, r, "", target, Input{Status: StatusPending, Quantity: 1}, shared.FormErrors{}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	target := targetFromForm(r)
	in, errs := inputFromForm(r)
	if len(errs) > 0 {
		h.renderForm(w, r, "", target, in, errs, http.StatusUnprocessableEntity)
		return
	}

	if _, err := h.service.Create(r.Context(), target, in); err != nil {
		h.logger.Warn("create sale failed", slog.Any("error", err))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to record sale.")
		}
		h.renderForm(w, r, "", target, in, shared.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Sale recorded.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	target, saleID := targetFromPath(r)
	sale, err := h.service.Find(r.Context(), target, saleID)
	if err != nil {
		h.logger.Warn("get sale failed", slog.Any("error", err), slog.String("sale_id", saleID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	in := Input{AccountID: sale.AccountID, Quantity: sale.Quantity, Status: sale.Status, Date: sale.Date.Format("2006-01-02")}
	if !in.Status.Valid() {
		in.Status = StatusPending
	}
	h.renderForm(w, r, saleID, target, in, shared.FormErrors{}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	target, saleID := targetFromPath(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in, errs := inputFromForm(r)
	if len(errs) > 0 {
		h.renderForm(w, r, saleID, target, in, errs, http.StatusUnprocessableEntity)
		return
	}

	if _, err := h.service.Update(r.Context(), target, saleID, in); err != nil {
		h.logger.Warn("update sale failed", slog.Any("error", err), slog.String("sale_id", saleID))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to update sale.")
		}
		h.renderForm(w, r, saleID, target, in, shared.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Sale updated.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	target, saleID := targetFromPath(r)
	if err := h.service.Delete(r.Context(), target, saleID); err != nil {
		h.logger.Warn("delete sale failed", slog.Any("error", err), slog.String("sale_id", saleID))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete sale.")
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Sale deleted.")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, saleID string, target Target, in Input, errs shared.FormErrors, status int) {
	items, err := h.service.Products(r.Context())
	if err != nil {
		h.logger.Warn("load product catalog failed", slog.Any("error", err))
		errs["product"] = "Products could not be loaded: " + shared.UserSafeMessage(err)
	}
	h.render(w, r, "pages/sales/form.html", map[string]any{
		"Errors":   errs,
		"SaleID":   saleID,
		"Target":   target,
		"Input":    in,
		"Products": items,
		"Statuses": Statuses,
	}, status)
}

func targetFromPath(r *http.Request) (Target, string) {
	return Target{GroupID: chi.URLParam(r, "groupID"), ProductID: chi.URLParam(r, "productID")}, chi.URLParam(r, "saleID")
}

// targetFromForm reads the "groupId/productId" value of the product picker.
func targetFromForm(r *http.Request) Target {
	groupID, productID, _ := strings.Cut(r.PostFormValue("product"), "/")
	return Target{GroupID: groupID, ProductID: productID}
}

func inputFromForm(r *http.Request) (Input, shared.FormErrors) {
	errs := shared.FormErrors{}
	in := Input{
		AccountID: r.PostFormValue("accountId"),
		Status:    Status(r.PostFormValue("status")),
		Date:      r.PostFormValue("date"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["quantity"] = "Quantity must be a whole number"
		}
		in.Quantity = n
	}
	return in, errs
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	if err := h.templates.Render(w, status, template, view.Page(r, h.csrf, "Sales", data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.AddFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
