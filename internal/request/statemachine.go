package request

import (
	"time"

	"github.com/frahmantamala/invoice-approval/internal"
	"github.com/frahmantamala/invoice-approval/internal/auth"
	"github.com/frahmantamala/invoice-approval/internal/core/common/validation"
)

// TransitionInput is everything the state machine needs to evaluate one
// action. The machine itself is pure: it never reads the clock or touches
// storage, so the caller supplies Now.
type TransitionInput struct {
	Action             Action
	ActorRole          auth.Role
	Comment            string
	PlannedPaymentDate *time.Time
	Now                time.Time
}

type transitionRule struct {
	from     Status
	action   Action
	roles    []auth.Role
	to       Status
	validate func(req *PaymentRequest, in TransitionInput) *internal.AppError
	apply    func(req *PaymentRequest, in TransitionInput)
}

// transitionTable is the single source of truth for the request lifecycle.
// Any (status, action, role) combination not listed here is rejected.
var transitionTable = []transitionRule{
	{
		from:   StatusSubmitted,
		action: ActionApprove,
		roles:  []auth.Role{auth.RoleManager},
		to:     StatusFinanceReview,
		validate: func(req *PaymentRequest, _ TransitionInput) *internal.AppError {
			if !validation.ValidTaxID(req.SupplierTaxID) {
				return internal.NewValidationFieldError("supplier_tax_id",
					"supplier tax id failed check-digit validation", internal.ErrCodeInvalidTaxID)
			}
			return nil
		},
		apply: func(req *PaymentRequest, in TransitionInput) {
			setOptionalComment(&req.ManagerComment, in.Comment)
			decidedAt := in.Now
			req.ManagerDecidedAt = &decidedAt
		},
	},
	{
		from:     StatusSubmitted,
		action:   ActionReject,
		roles:    []auth.Role{auth.RoleManager},
		to:       StatusManagerRejected,
		validate: requireComment,
		apply: func(req *PaymentRequest, in TransitionInput) {
			comment := in.Comment
			req.ManagerComment = &comment
			decidedAt := in.Now
			req.ManagerDecidedAt = &decidedAt
		},
	},
	{
		from:   StatusFinanceReview,
		action: ActionApprove,
		roles:  []auth.Role{auth.RoleFinance, auth.RoleAdmin},
		to:     StatusApproved,
		apply: func(req *PaymentRequest, in TransitionInput) {
			setOptionalComment(&req.FinanceComment, in.Comment)
			decidedAt := in.Now
			req.FinanceDecidedAt = &decidedAt
		},
	},
	{
		from:     StatusFinanceReview,
		action:   ActionReject,
		roles:    []auth.Role{auth.RoleFinance, auth.RoleAdmin},
		to:       StatusFinanceRejected,
		validate: requireComment,
		apply: func(req *PaymentRequest, in TransitionInput) {
			comment := in.Comment
			req.FinanceComment = &comment
			decidedAt := in.Now
			req.FinanceDecidedAt = &decidedAt
		},
	},
	{
		from:   StatusApproved,
		action: ActionSchedule,
		roles:  []auth.Role{auth.RoleFinance, auth.RoleAdmin},
		to:     StatusPaymentScheduled,
		validate: func(_ *PaymentRequest, in TransitionInput) *internal.AppError {
			if in.PlannedPaymentDate == nil || in.PlannedPaymentDate.IsZero() {
				return internal.NewValidationFieldError("planned_payment_date",
					"a planned payment date is required to schedule", internal.ErrCodeInvalidDate)
			}
			return nil
		},
		apply: func(req *PaymentRequest, in TransitionInput) {
			planned := *in.PlannedPaymentDate
			req.PlannedPaymentDate = &planned
		},
	},
	{
		from:   StatusApproved,
		action: ActionMarkPaid,
		roles:  []auth.Role{auth.RoleFinance, auth.RoleAdmin},
		to:     StatusPaid,
		apply: func(req *PaymentRequest, in TransitionInput) {
			setOptionalComment(&req.FinanceComment, in.Comment)
		},
	},
	{
		from:   StatusPaymentScheduled,
		action: ActionMarkPaid,
		roles:  []auth.Role{auth.RoleFinance, auth.RoleAdmin},
		to:     StatusPaid,
		apply: func(req *PaymentRequest, in TransitionInput) {
			setOptionalComment(&req.FinanceComment, in.Comment)
		},
	},
	{
		from:   StatusManagerRejected,
		action: ActionResubmit,
		roles:  []auth.Role{auth.RoleRequester},
		to:     StatusSubmitted,
		apply: func(req *PaymentRequest, in TransitionInput) {
			// rejection context is cleared so the manager reviews fresh
			req.ManagerComment = nil
			req.ManagerDecidedAt = nil
		},
	},
}

// ApplyTransition evaluates the table against a copy of req and returns the
// updated request. It never partially writes: either every required write is
// on the returned value, or the input is untouched and an error explains why.
func ApplyTransition(req PaymentRequest, in TransitionInput) (PaymentRequest, error) {
	rule, ok := findRule(req.Status, in.Action, in.ActorRole)
	if !ok {
		return req, internal.NewInvalidTransitionError(string(req.Status), string(in.Action), string(in.ActorRole))
	}

	if rule.validate != nil {
		if err := rule.validate(&req, in); err != nil {
			return req, err
		}
	}

	rule.apply(&req, in)
	req.Status = rule.to
	req.UpdatedAt = in.Now

	return req, nil
}

// AllowedActions lists the actions a role could invoke from a status. Used
// by the UI shell to render buttons; authorization still decides per-user.
func AllowedActions(status Status, role auth.Role) []Action {
	var actions []Action
	for _, rule := range transitionTable {
		if rule.from == status && roleAllowed(rule.roles, role) {
			actions = append(actions, rule.action)
		}
	}
	return actions
}

func findRule(from Status, action Action, role auth.Role) (transitionRule, bool) {
	for _, rule := range transitionTable {
		if rule.from == from && rule.action == action && roleAllowed(rule.roles, role) {
			return rule, true
		}
	}
	return transitionRule{}, false
}

func roleAllowed(roles []auth.Role, role auth.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func requireComment(_ *PaymentRequest, in TransitionInput) *internal.AppError {
	if in.Comment == "" {
		return internal.NewValidationFieldError("comment",
			"a comment is required when rejecting a request", internal.ErrCodeMissingComment)
	}
	return nil
}

func setOptionalComment(target **string, comment string) {
	if comment != "" {
		c := comment
		*target = &c
	}
}
