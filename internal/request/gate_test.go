package request_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	"github.com/frahmantamala/invoice-approval/internal/request"
)

func requesterUser(id int64) *auth.User {
	return &auth.User{
		ID:     id,
		Email:  "maria@mail.com",
		Name:   "Maria",
		Grants: []auth.RoleGrant{{Role: auth.RoleRequester}},
	}
}

func managerUser(id int64, companyIDs ...int64) *auth.User {
	u := &auth.User{ID: id, Email: "joao@mail.com", Name: "Joao"}
	for i := range companyIDs {
		u.Grants = append(u.Grants, auth.RoleGrant{Role: auth.RoleManager, CompanyID: &companyIDs[i]})
	}
	return u
}

func financeUser(id int64) *auth.User {
	return &auth.User{
		ID:     id,
		Email:  "ana@mail.com",
		Name:   "Ana",
		Grants: []auth.RoleGrant{{Role: auth.RoleFinance}},
	}
}

func adminUser(id int64) *auth.User {
	return &auth.User{
		ID:     id,
		Email:  "padil@mail.com",
		Name:   "Padil",
		Grants: []auth.RoleGrant{{Role: auth.RoleAdmin}},
	}
}

var _ = Describe("Gate", func() {
	var gate request.Gate

	BeforeEach(func() {
		gate = request.NewGate()
	})

	Describe("CanTransition", func() {
		It("lets a manager of the request's company act at the submitted stage", func() {
			req := baseRequest(request.StatusSubmitted)
			manager := managerUser(200, req.CompanyID)

			Expect(gate.CanTransition(manager, &req, request.ActionApprove)).To(BeTrue())
			Expect(gate.CanTransition(manager, &req, request.ActionReject)).To(BeTrue())
		})

		It("denies a manager scoped to another company", func() {
			req := baseRequest(request.StatusSubmitted)
			otherManager := managerUser(201, req.CompanyID+1)

			Expect(gate.CanTransition(otherManager, &req, request.ActionApprove)).To(BeFalse())
		})

		It("denies a manager grant with no company scope", func() {
			req := baseRequest(request.StatusSubmitted)
			unscoped := &auth.User{ID: 202, Grants: []auth.RoleGrant{{Role: auth.RoleManager}}}

			Expect(gate.CanTransition(unscoped, &req, request.ActionApprove)).To(BeFalse())
		})

		It("denies the requester at decision stages", func() {
			req := baseRequest(request.StatusSubmitted)
			owner := requesterUser(req.RequesterID)

			Expect(gate.CanTransition(owner, &req, request.ActionApprove)).To(BeFalse())
		})

		It("hands later stages to finance and admin", func() {
			req := baseRequest(request.StatusFinanceReview)

			Expect(gate.CanTransition(financeUser(300), &req, request.ActionApprove)).To(BeTrue())
			Expect(gate.CanTransition(adminUser(301), &req, request.ActionApprove)).To(BeTrue())
			Expect(gate.CanTransition(managerUser(200, req.CompanyID), &req, request.ActionApprove)).To(BeFalse())
		})

		It("reserves resubmission for the owning requester", func() {
			req := baseRequest(request.StatusManagerRejected)
			owner := requesterUser(req.RequesterID)
			other := requesterUser(req.RequesterID + 1)

			Expect(gate.CanTransition(owner, &req, request.ActionResubmit)).To(BeTrue())
			Expect(gate.CanTransition(other, &req, request.ActionResubmit)).To(BeFalse())
			Expect(gate.CanTransition(financeUser(300), &req, request.ActionResubmit)).To(BeFalse())
		})
	})

	Describe("CanView", func() {
		It("allows the owner, the company manager, and finance", func() {
			req := baseRequest(request.StatusSubmitted)

			Expect(gate.CanView(requesterUser(req.RequesterID), &req)).To(BeTrue())
			Expect(gate.CanView(managerUser(200, req.CompanyID), &req)).To(BeTrue())
			Expect(gate.CanView(financeUser(300), &req)).To(BeTrue())
		})

		It("hides requests from unrelated requesters and managers", func() {
			req := baseRequest(request.StatusSubmitted)

			Expect(gate.CanView(requesterUser(req.RequesterID+1), &req)).To(BeFalse())
			Expect(gate.CanView(managerUser(200, req.CompanyID+1), &req)).To(BeFalse())
		})
	})

	Describe("VisibleScope", func() {
		It("gives finance every company", func() {
			Expect(gate.VisibleScope(financeUser(300)).AllCompanies).To(BeTrue())
			Expect(gate.VisibleScope(adminUser(301)).AllCompanies).To(BeTrue())
		})

		It("gives a manager only their scoped companies", func() {
			scope := gate.VisibleScope(managerUser(200, 10, 11))
			Expect(scope.AllCompanies).To(BeFalse())
			Expect(scope.CompanyIDs).To(ConsistOf(int64(10), int64(11)))
		})

		It("gives a plain requester no company scope", func() {
			scope := gate.VisibleScope(requesterUser(100))
			Expect(scope.AllCompanies).To(BeFalse())
			Expect(scope.CompanyIDs).To(BeEmpty())
		})
	})

	Describe("EffectiveRole", func() {
		It("records the manager role at the submitted stage", func() {
			req := baseRequest(request.StatusSubmitted)
			role := gate.EffectiveRole(managerUser(200, req.CompanyID), &req, request.ActionApprove)
			Expect(role).To(Equal(auth.RoleManager))
		})

		It("records the finance role at later stages", func() {
			req := baseRequest(request.StatusFinanceReview)
			Expect(gate.EffectiveRole(financeUser(300), &req, request.ActionApprove)).To(Equal(auth.RoleFinance))
			Expect(gate.EffectiveRole(adminUser(301), &req, request.ActionApprove)).To(Equal(auth.RoleAdmin))
		})

		It("records the requester role on resubmission", func() {
			req := baseRequest(request.StatusManagerRejected)
			Expect(gate.EffectiveRole(requesterUser(req.RequesterID), &req, request.ActionResubmit)).To(Equal(auth.RoleRequester))
		})
	})
})
