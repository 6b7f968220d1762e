package accounts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/inventory-admin/internal/platform/httpx"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/view"
)

const basePath = "/accounts"

// Handler serves the account and permission pages.
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

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.UpdateRole)
	r.Post("/{id}/delete", h.Delete)
	r.Get("/{id}/permissions", h.PermissionsForm)
	r.Post("/{id}/permissions", h.AssignPermissions)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.service.List(r.Context())
	if state.IsError() {
		h.logger.Warn("list accounts failed", slog.String("message", state.Message))
	}
	assignments := NewSessionAssignments(shared.SessionFromContext(r.Context()))
	assigned := make(map[string]int, len(state.Items))
	for _, a := range state.Items {
		assigned[a.ID] = len(assignments.Assigned(a.ID))
	}
	h.render(w, r, "pages/accounts/list.html", map[string]any{
		"State":    state,
		"Assigned": assigned,
		"BasePath": basePath,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderCreateForm(w, r, CreateInput{Role: RoleStaff}, nil, shared.FormErrors{}, http.StatusOK)
}

// Create registers the account, then grants any permissions ticked on the
// form through the same batch as the permissions page.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := CreateInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Role:     Role(r.PostFormValue("role")),
	}
	permissionIDs := r.PostForm["permissionIds"]

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create account failed", slog.Any("error", err))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to create account.")
		}
		in.Password = ""
		h.renderCreateForm(w, r, in, permissionIDs, shared.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}

	message := "Account \"" + created.Username + "\" created."
	if len(dedupe(permissionIDs)) == 0 {
		h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, message)
		return
	}
	summary, err := h.assign(r, created.ID, permissionIDs)
	if err != nil {
		h.redirectWithFlash(w, r, basePath, shared.FlashError, message+" "+shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, basePath, summary.Kind(), message+" "+summary.Message())
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("get account failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/accounts/edit.html", map[string]any{
		"Errors":  shared.FormErrors{},
		"Account": account,
		"Input":   RoleInput{Role: account.Role},
		"Roles":   Roles,
	}, http.StatusOK)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := RoleInput{Role: Role(r.PostFormValue("role"))}

	if _, err := h.service.UpdateRole(r.Context(), id, in); err != nil {
		h.logger.Warn("update account role failed", slog.Any("error", err), slog.String("id", id))
		if !errors.Is(err, shared.ErrValidation) {
			shared.AddFlash(r, shared.FlashError, "Failed to update account.")
		}
		h.render(w, r, "pages/accounts/edit.html", map[string]any{
			"Errors":  shared.FieldErrors(err),
			"Account": Account{ID: id, Username: r.PostFormValue("username")},
			"Input":   in,
			"Roles":   Roles,
		}, http.StatusUnprocessableEntity)
		return
	}
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Account role updated.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete account failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, "Failed to delete account.")
		return
	}
	NewSessionAssignments(shared.SessionFromContext(r.Context())).Forget(id)
	h.redirectWithFlash(w, r, basePath, shared.FlashSuccess, "Account deleted.")
}

func (h *Handler) PermissionsForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("get account failed", slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, basePath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	data := map[string]any{
		"Account":  account,
		"Assigned": NewSessionAssignments(shared.SessionFromContext(r.Context())).Assigned(id),
	}
	perms, err := h.service.Permissions(r.Context())
	if err != nil {
		h.logger.Warn("list permissions failed", slog.Any("error", err))
		data["Error"] = shared.UserSafeMessage(err)
	}
	data["Permissions"] = perms
	h.render(w, r, "pages/accounts/permissions.html", data, http.StatusOK)
}

// AssignPermissions runs the batch for the ticked permissions. Clients that
// accept JSON get the summary as a JSON body instead of a redirect.
func (h *Handler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wantsJSON := httpx.WantsJSON(r)

	var permissionIDs []string
	if httpx.IsJSON(r) {
		var body struct {
			PermissionIDs []string `json:"permissionIds"`
		}
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		permissionIDs = body.PermissionIDs
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		permissionIDs = r.PostForm["permissionIds"]
	}

	summary, err := h.assign(r, id, permissionIDs)
	if err != nil {
		if wantsJSON {
			httpx.RespondError(w, err)
			return
		}
		h.redirectWithFlash(w, r, basePath+"/"+id+"/permissions", shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	if wantsJSON {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"summary": summary,
			"message": summary.Message(),
			"kind":    summary.Kind(),
		})
		return
	}
	h.redirectWithFlash(w, r, basePath, summary.Kind(), summary.Message())
}

// assign runs the batch and marks the whole requested set as assigned in the
// session, including permissions that failed.
func (h *Handler) assign(r *http.Request, accountID string, permissionIDs []string) (AssignmentSummary, error) {
	summary, err := h.service.AssignPermissions(r.Context(), accountID, permissionIDs)
	if err != nil {
		h.logger.Warn("assign permissions rejected", slog.Any("error", err), slog.String("account_id", accountID))
		return AssignmentSummary{}, err
	}
	NewSessionAssignments(shared.SessionFromContext(r.Context())).MarkAssigned(accountID, summary.Requested())
	h.logger.Info("permissions assigned",
		slog.String("account_id", accountID),
		slog.Int("granted", summary.Granted),
		slog.Int("already_granted", summary.AlreadyGranted),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (h *Handler) renderCreateForm(w http.ResponseWriter, r *http.Request, in CreateInput, selected []string, errs shared.FormErrors, status int) {
	perms, err := h.service.Permissions(r.Context())
	if err != nil {
		h.logger.Warn("list permissions failed", slog.Any("error", err))
		errs["permissionIds"] = "Permissions could not be loaded: " + shared.UserSafeMessage(err)
	}
	checked := make(map[string]bool, len(selected))
	for _, id := range selected {
		checked[id] = true
	}
	h.render(w, r, "pages/accounts/form.html", map[string]any{
		"Errors":      errs,
		"Input":       in,
		"Roles":       Roles,
		"Permissions": perms,
		"Checked":     checked,
	}, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	if err := h.templates.Render(w, status, template, view.Page(r, h.csrf, "Accounts", data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.AddFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
