package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

type stubRepo struct {
	Repository
	mu     sync.Mutex
	grants []string
	errs   map[string]error
}

func (s *stubRepo) Grant(_ context.Context, _ string, permissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants = append(s.grants, permissionID)
	return s.errs[permissionID]
}

func TestAssignPermissionsCountsOutcomes(t *testing.T) {
	repo := &stubRepo{errs: map[string]error{
		"p2": &backend.Error{Kind: backend.KindConflict, Status: 409},
		"p3": &backend.Error{Kind: backend.KindStatus, Status: 500, Message: "database down"},
	}}
	svc := NewService(repo)

	summary, err := svc.AssignPermissions(context.Background(), "a1", []string{"p1", "p2", "p3", "p1", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, repo.grants, "sequential, deduplicated")
	assert.Equal(t, 1, summary.Granted)
	assert.Equal(t, 1, summary.AlreadyGranted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, []string{"p1", "p2", "p3"}, summary.Requested())
	assert.Equal(t, OutcomeFailed, summary.Results[2].Outcome)
	assert.Equal(t, "database down", summary.Results[2].Message)
	assert.Equal(t, shared.FlashWarning, summary.Kind())
}

func TestAssignPermissionsMessages(t *testing.T) {
	for _, tc := range []struct {
		name    string
		summary AssignmentSummary
		kind    string
		message string
	}{
		{"all granted", AssignmentSummary{Granted: 2}, shared.FlashSuccess, "Permissions assigned successfully! 2 permissions granted."},
		{"some already granted", AssignmentSummary{Granted: 1, AlreadyGranted: 1}, shared.FlashSuccess, "Permissions assigned! 1 new permissions granted, 1 were already assigned."},
		{"partial failure", AssignmentSummary{Granted: 1, Failed: 2}, shared.FlashWarning, "Some permissions could not be assigned: 1 granted, 0 already assigned, 2 failed."},
		{"everything failed", AssignmentSummary{Failed: 2}, shared.FlashError, "Some permissions could not be assigned: 0 granted, 0 already assigned, 2 failed."},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.summary.Kind())
			assert.Equal(t, tc.message, tc.summary.Message())
		})
	}
}

func TestAssignPermissionsCanceledContextSkipsRequests(t *testing.T) {
	repo := &stubRepo{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := NewService(repo).AssignPermissions(ctx, "a1", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Empty(t, repo.grants)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2, summary.Total())
	assert.Equal(t, shared.FlashError, summary.Kind())
}

func TestAssignPermissionsRejectsEmptyBatch(t *testing.T) {
	svc := NewService(&stubRepo{})

	_, err := svc.AssignPermissions(context.Background(), "a1", nil)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = svc.AssignPermissions(context.Background(), "", []string{"p1"})
	assert.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestCreateValidatesBeforeCallingBackend(t *testing.T) {
	svc := NewService(&stubRepo{})
	_, err := svc.Create(context.Background(), CreateInput{Username: "ab", Password: "short", Role: "owner"})
	require.ErrorIs(t, err, shared.ErrValidation)

	errs := shared.FieldErrors(err)
	assert.Equal(t, "Username must be at least 3 characters", errs["username"])
	assert.Equal(t, "Password must be at least 8 characters", errs["password"])
	assert.Equal(t, "Role must be one of: staff, manager, superadmin", errs["role"])
}

func TestSessionAssignmentsMergeAndForget(t *testing.T) {
	sess := &shared.Session{ID: "s1"}
	a := NewSessionAssignments(sess)

	a.MarkAssigned("a1", []string{"p2"})
	a.MarkAssigned("a1", []string{"p1", "p2"})
	assert.Equal(t, map[string]bool{"p1": true, "p2": true}, a.Assigned("a1"))
	assert.Empty(t, a.Assigned("a2"))

	a.Forget("a1")
	assert.Empty(t, a.Assigned("a1"))

	assert.Empty(t, NewSessionAssignments(nil).Assigned("a1"))
}
