package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/testing/webtest"
)

type fakeAccountAPI struct {
	mu          sync.Mutex
	accounts    []Account
	permissions []Permission
	granted     map[string]map[string]bool
	failGrant   map[string]bool
	grants      []string
}

func newFakeAccountAPI() *fakeAccountAPI {
	return &fakeAccountAPI{
		accounts:    []Account{{ID: "a1", Username: "alice", Role: RoleStaff}},
		permissions: []Permission{{ID: "p1", Name: "View stock"}, {ID: "p2", Name: "Edit stock"}, {ID: "p3", Name: "Delete stock"}},
		granted:     map[string]map[string]bool{},
		failGrant:   map[string]bool{},
	}
}

func (f *fakeAccountAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && parts[0] == "":
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.accounts})
	case r.Method == http.MethodGet && parts[0] == "permissions":
		_ = json.NewEncoder(w).Encode(f.permissions)
	case r.Method == http.MethodGet && len(parts) == 1:
		for _, a := range f.accounts {
			if a.ID == parts[0] {
				_ = json.NewEncoder(w).Encode(a)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPost && parts[0] == "":
		var in CreateInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		a := Account{ID: "a" + string(rune('0'+len(f.accounts)+1)), Username: in.Username, Role: in.Role}
		f.accounts = append(f.accounts, a)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(a)
	case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "permissions":
		var body grantRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.grants = append(f.grants, body.PermissionID)
		if f.failGrant[body.PermissionID] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"grant store offline"}`))
			return
		}
		set := f.granted[parts[0]]
		if set == nil {
			set = map[string]bool{}
			f.granted[parts[0]] = set
		}
		if set[body.PermissionID] {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"permission already granted"}`))
			return
		}
		set[body.PermissionID] = true
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPatch && len(parts) == 1:
		var in RoleInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i := range f.accounts {
			if f.accounts[i].ID == parts[0] {
				f.accounts[i].Role = in.Role
				_ = json.NewEncoder(w).Encode(f.accounts[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodDelete && len(parts) == 1:
		for i := range f.accounts {
			if f.accounts[i].ID == parts[0] {
				f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setup(t *testing.T, api *fakeAccountAPI) (*webtest.Env, http.Handler) {
	t.Helper()
	env := webtest.New(t)
	client := webtest.Backend(t, "accounts", api)
	h := NewHandler(env.Logger, NewService(NewRepository(client)), env.Templates, env.CSRF)
	r := chi.NewRouter()
	r.Route("/accounts", h.MountRoutes)
	return env, r
}

func TestAssignPermissionsWithOneAlreadyGranted(t *testing.T) {
	api := newFakeAccountAPI()
	api.granted["a1"] = map[string]bool{"p2": true}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/accounts/a1/permissions", url.Values{"permissionIds": {"p1", "p2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts", rec.Header().Get("Location"))

	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)
	assert.Equal(t, "Permissions assigned! 1 new permissions granted, 1 were already assigned.", flash.Message)
	assert.Equal(t, []string{"p1", "p2"}, api.grants)
	assert.Equal(t, map[string]bool{"p1": true, "p2": true}, NewSessionAssignments(env.Session).Assigned("a1"))
}

func TestAssignPermissionsMarksFailedOnesToo(t *testing.T) {
	api := newFakeAccountAPI()
	api.failGrant["p3"] = true
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/accounts/a1/permissions", url.Values{"permissionIds": {"p1", "p3"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashWarning, flash.Kind)
	assert.Equal(t, "Some permissions could not be assigned: 1 granted, 0 already assigned, 1 failed.", flash.Message)
	assert.True(t, NewSessionAssignments(env.Session).Assigned("a1")["p3"])

	page := env.Serve(router, http.MethodGet, "/accounts/a1/permissions", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Equal(t, 3, strings.Count(page.Body.String(), `data-row="permission"`))
	assert.Equal(t, 2, strings.Count(page.Body.String(), "checked>"))
}

func TestAssignPermissionsWithNothingSelected(t *testing.T) {
	api := newFakeAccountAPI()
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/accounts/a1/permissions", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/a1/permissions", rec.Header().Get("Location"))
	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "Select at least one permission to assign.", flash.Message)
	assert.Empty(t, api.grants)
}

func TestAssignPermissionsJSON(t *testing.T) {
	api := newFakeAccountAPI()
	api.granted["a1"] = map[string]bool{"p1": true}
	env, router := setup(t, api)

	req := httptest.NewRequest(http.MethodPost, "/accounts/a1/permissions", strings.NewReader(`{"permissionIds":["p1","p2"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req = req.WithContext(shared.ContextWithSession(req.Context(), env.Session))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Summary AssignmentSummary `json:"summary"`
		Message string            `json:"message"`
		Kind    string            `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.Granted)
	assert.Equal(t, 1, body.Summary.AlreadyGranted)
	assert.Equal(t, shared.FlashSuccess, body.Kind)
	assert.Equal(t, "Permissions assigned! 1 new permissions granted, 1 were already assigned.", body.Message)
	assert.Nil(t, env.Flash())
}

func TestAssignPermissionsJSONRejectsEmptyBatch(t *testing.T) {
	env, router := setup(t, newFakeAccountAPI())

	req := httptest.NewRequest(http.MethodPost, "/accounts/a1/permissions", strings.NewReader(`{"permissionIds":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req = req.WithContext(shared.ContextWithSession(req.Context(), env.Session))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select at least one permission to assign.")
}

func TestCreateAccountWithPermissions(t *testing.T) {
	api := newFakeAccountAPI()
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/accounts", url.Values{
		"username":      {"bob"},
		"password":      {"correct-horse"},
		"role":          {"manager"},
		"permissionIds": {"p1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, `Account "bob" created. Permissions assigned successfully! 1 permissions granted.`, flash.Message)
	assert.True(t, api.granted["a2"]["p1"])

	list := env.Serve(router, http.MethodGet, "/accounts", nil)
	assert.Equal(t, 2, strings.Count(list.Body.String(), `data-row="account"`))
	assert.Contains(t, list.Body.String(), "1 assigned this session")
}

func TestCreateAccountValidation(t *testing.T) {
	api := newFakeAccountAPI()
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/accounts", url.Values{"username": {"bo"}, "password": {"x"}, "role": {"staff"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username must be at least 3 characters")
	assert.Contains(t, rec.Body.String(), "Password must be at least 8 characters")
	assert.Len(t, api.accounts, 1)
	assert.Nil(t, env.Flash())
}

func TestDeleteAccountForgetsAssignments(t *testing.T) {
	api := newFakeAccountAPI()
	env, router := setup(t, api)
	NewSessionAssignments(env.Session).MarkAssigned("a1", []string{"p1"})

	rec := env.Serve(router, http.MethodPost, "/accounts/a1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, api.accounts)
	assert.Empty(t, NewSessionAssignments(env.Session).Assigned("a1"))

	rec = env.Serve(router, http.MethodPost, "/accounts/a1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	env.Flash()
	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "Failed to delete account.", flash.Message)
}

func TestUpdateRole(t *testing.T) {
	api := newFakeAccountAPI()
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/accounts/a1", url.Values{"role": {"superadmin"}, "username": {"alice"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RoleSuperadmin, api.accounts[0].Role)

	rec = env.Serve(router, http.MethodPost, "/accounts/a1", url.Values{"role": {"owner"}, "username": {"alice"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Role must be one of: staff, manager, superadmin")
}
