package accounts

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

// Outcome classifies one permission grant.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeAlreadyGranted Outcome = "already_granted"
	OutcomeFailed         Outcome = "failed"
)

// Result is the outcome of granting one permission.
type Result struct {
	PermissionID string  `json:"permissionId"`
	Outcome      Outcome `json:"outcome"`
	Message      string  `json:"message,omitempty"`
}

// AssignmentSummary aggregates a batch of grants. Granted, AlreadyGranted and
// Failed always add up to the number of requested permissions.
type AssignmentSummary struct {
	AccountID      string   `json:"accountId"`
	Granted        int      `json:"granted"`
	AlreadyGranted int      `json:"alreadyGranted"`
	Failed         int      `json:"failed"`
	Results        []Result `json:"results"`
}

// Total is the number of permissions attempted.
func (s AssignmentSummary) Total() int {
	return s.Granted + s.AlreadyGranted + s.Failed
}

// Requested lists every permission id of the batch, whatever its outcome.
func (s AssignmentSummary) Requested() []string {
	ids := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		ids = append(ids, r.PermissionID)
	}
	return ids
}

func (s *AssignmentSummary) record(r Result) {
	switch r.Outcome {
	case OutcomeSuccess:
		s.Granted++
	case OutcomeAlreadyGranted:
		s.AlreadyGranted++
	default:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Kind is the flash kind for the summary.
func (s AssignmentSummary) Kind() string {
	switch {
	case s.Failed == 0:
		return shared.FlashSuccess
	case s.Granted+s.AlreadyGranted == 0:
		return shared.FlashError
	default:
		return shared.FlashWarning
	}
}

// Message is the notification text for the summary.
func (s AssignmentSummary) Message() string {
	switch {
	case s.Failed > 0:
		return fmt.Sprintf("Some permissions could not be assigned: %d granted, %d already assigned, %d failed.", s.Granted, s.AlreadyGranted, s.Failed)
	case s.AlreadyGranted > 0:
		return fmt.Sprintf("Permissions assigned! %d new permissions granted, %d were already assigned.", s.Granted, s.AlreadyGranted)
	default:
		return fmt.Sprintf("Permissions assigned successfully! %d permissions granted.", s.Granted)
	}
}

const assignedKeyPrefix = "assigned:"

// SessionAssignments keeps, per account, the permissions this browser
// session has assigned. It is never reconciled with the account service.
type SessionAssignments struct {
	sess *shared.Session
}

// NewSessionAssignments wraps sess; a nil session stores nothing.
func NewSessionAssignments(sess *shared.Session) SessionAssignments {
	return SessionAssignments{sess: sess}
}

// Assigned returns the permission ids marked for accountID.
func (a SessionAssignments) Assigned(accountID string) map[string]bool {
	out := map[string]bool{}
	if a.sess == nil {
		return out
	}
	raw := a.sess.Get(assignedKeyPrefix + accountID)
	if raw == "" {
		return out
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return out
	}
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// MarkAssigned adds ids to the account's assigned set.
func (a SessionAssignments) MarkAssigned(accountID string, ids []string) {
	if a.sess == nil || accountID == "" || len(ids) == 0 {
		return
	}
	set := a.Assigned(accountID)
	for _, id := range ids {
		set[id] = true
	}
	merged := make([]string, 0, len(set))
	for id := range set {
		merged = append(merged, id)
	}
	sort.Strings(merged)
	raw, _ := json.Marshal(merged)
	a.sess.Set(assignedKeyPrefix+accountID, string(raw))
}

// Forget drops the account's assigned set.
func (a SessionAssignments) Forget(accountID string) {
	if a.sess != nil {
		a.sess.Delete(assignedKeyPrefix + accountID)
	}
}
