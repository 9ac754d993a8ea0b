package request

import (
	"github.com/frahmantamala/invoice-approval/internal/auth"
)

// Scope bounds what a user may list. AllCompanies short-circuits company
// filtering; otherwise CompanyIDs holds the manager-scoped companies and the
// caller additionally sees their own requests.
type Scope struct {
	AllCompanies bool
	CompanyIDs   []int64
}

// Gate decides which transitions a user may invoke on a given request. It is
// a pure function over the user's grant set plus company scope; denials are
// surfaced by the service as Unauthorized, never as a silent no-op.
type Gate struct{}

func NewGate() Gate {
	return Gate{}
}

// CanTransition reports whether the actor may invoke action on req.
// The stage implied by the request's current status decides which grants
// matter: the submitted stage belongs to the company-scoped manager, every
// later stage to finance (admin carries finance's rights), and resubmission
// to the request's own requester.
func (Gate) CanTransition(actor *auth.User, req *PaymentRequest, action Action) bool {
	if actor == nil {
		return false
	}

	if action == ActionResubmit {
		return req.IsOwnedBy(actor.ID)
	}

	if req.Status == StatusSubmitted {
		// first approval stage: manager grants are meaningful only when
		// scoped to the request's company; an unscoped manager grant
		// grants nothing
		return actor.ManagesCompany(req.CompanyID)
	}

	return actor.IsFinance()
}

// CanView allows the requester, a manager scoped to the company, and
// finance/admin to read a request and its history.
func (Gate) CanView(actor *auth.User, req *PaymentRequest) bool {
	if actor == nil {
		return false
	}
	if req.IsOwnedBy(actor.ID) {
		return true
	}
	if actor.ManagesCompany(req.CompanyID) {
		return true
	}
	return actor.IsFinance()
}

// CanEdit allows field edits only by the owning requester and only while the
// request sits in an editable status.
func (Gate) CanEdit(actor *auth.User, req *PaymentRequest) bool {
	return actor != nil && req.IsOwnedBy(actor.ID)
}

func (Gate) CanDelete(actor *auth.User, req *PaymentRequest) bool {
	return actor != nil && req.IsOwnedBy(actor.ID)
}

// VisibleScope is used by the service to filter list queries.
func (Gate) VisibleScope(actor *auth.User) Scope {
	if actor == nil {
		return Scope{}
	}
	if actor.IsFinance() {
		return Scope{AllCompanies: true}
	}
	return Scope{CompanyIDs: actor.ManagedCompanies()}
}

// EffectiveRole names the role the actor exercises for a given transition,
// recorded on history rows and invalid-transition errors.
func (Gate) EffectiveRole(actor *auth.User, req *PaymentRequest, action Action) auth.Role {
	if action == ActionResubmit {
		return auth.RoleRequester
	}
	if req.Status == StatusSubmitted && actor.ManagesCompany(req.CompanyID) {
		return auth.RoleManager
	}
	if actor.HasRole(auth.RoleFinance) {
		return auth.RoleFinance
	}
	if actor.IsAdmin() {
		return auth.RoleAdmin
	}
	if actor.HasRole(auth.RoleManager) {
		return auth.RoleManager
	}
	return auth.RoleRequester
}
