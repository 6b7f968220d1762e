package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

var errMissingID = errors.New("account id is required")

// Service manages accounts and grants permissions.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) shared.ListState[Account] {
	items, err := s.repo.List(ctx)
	if err != nil {
		return shared.NewListState[Account](nil, fmt.Errorf("list accounts: %w", err))
	}
	return shared.NewListState(items, nil)
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	if strings.TrimSpace(id) == "" {
		return Account{}, errMissingID
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

// Permissions returns the grantable permission catalogue.
func (s *Service) Permissions(ctx context.Context) ([]Permission, error) {
	perms, err := s.repo.Permissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := shared.Validate(in); err != nil {
		return Account{}, err
	}
	a, err := s.repo.Create(ctx, in)
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *Service) UpdateRole(ctx context.Context, id string, in RoleInput) (Account, error) {
	if strings.TrimSpace(id) == "" {
		return Account{}, errMissingID
	}
	if err := shared.Validate(in); err != nil {
		return Account{}, err
	}
	a, err := s.repo.UpdateRole(ctx, id, in)
	if err != nil {
		return Account{}, fmt.Errorf("update account %s role: %w", id, err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return nil
}

// AssignPermissions grants each permission in turn, one request at a time,
// and never stops early. A conflict counts as already granted; every other
// error counts as failed. Once ctx is done the remaining permissions are
// recorded as failed without being requested.
func (s *Service) AssignPermissions(ctx context.Context, accountID string, permissionIDs []string) (AssignmentSummary, error) {
	accountID = strings.TrimSpace(accountID)
	ids := dedupe(permissionIDs)
	if accountID == "" || len(ids) == 0 {
		return AssignmentSummary{}, ErrInvalidAssignment
	}

	summary := AssignmentSummary{AccountID: accountID, Results: make([]Result, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			summary.record(Result{PermissionID: id, Outcome: OutcomeFailed, Message: shared.UserSafeMessage(&backend.Error{Kind: backend.KindCanceled, Err: err})})
			continue
		}
		err := s.repo.Grant(ctx, accountID, id)
		switch {
		case err == nil:
			summary.record(Result{PermissionID: id, Outcome: OutcomeSuccess})
		case backend.IsKind(err, backend.KindConflict):
			summary.record(Result{PermissionID: id, Outcome: OutcomeAlreadyGranted})
		default:
			summary.record(Result{PermissionID: id, Outcome: OutcomeFailed, Message: shared.UserSafeMessage(err)})
		}
	}
	return summary, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
