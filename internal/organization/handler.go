package organization

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/invoice-approval/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetCompanies(ctx context.Context) ([]*Company, error)
	GetSectors(ctx context.Context, companyID int64) ([]*Sector, error)
	GetCostCenters(ctx context.Context, sectorID int64) ([]*CostCenter, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Service.GetCompanies(r.Context())
	if err != nil {
		h.Logger.Error("GetCompanies: failed to get companies", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get companies")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"companies": companies})
}

func (h *Handler) GetSectors(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}

	sectors, err := h.Service.GetSectors(r.Context(), companyID)
	if err != nil {
		h.Logger.Error("GetSectors: failed to get sectors", "error", err, "company_id", companyID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get sectors")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"sectors": sectors})
}

func (h *Handler) GetCostCenters(w http.ResponseWriter, r *http.Request) {
	sectorID, ok := h.pathID(w, r, "sectorID")
	if !ok {
		return
	}

	centers, err := h.Service.GetCostCenters(r.Context(), sectorID)
	if err != nil {
		h.Logger.Error("GetCostCenters: failed to get cost centers", "error", err, "sector_id", sectorID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get cost centers")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"cost_centers": centers})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
