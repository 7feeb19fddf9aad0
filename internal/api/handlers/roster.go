package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/api/dto"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/planner"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// RosterHandler exposes read-only roster retrieval endpoints.
type RosterHandler struct {
	Repo ports.RosterRepository
}

func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	kids, err := h.Repo.ListKids(ctx)
	if err != nil {
		zap.L().Error("list kids failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	staff, err := h.Repo.ListStaff(ctx)
	if err != nil {
		zap.L().Error("list staff failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	schools, err := h.Repo.ListSchools(ctx)
	if err != nil {
		zap.L().Error("list schools failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	vans, err := h.Repo.ListVans(ctx)
	if err != nil {
		zap.L().Error("list vans failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	now := time.Now()
	res := dto.RosterResponse{
		Kids:    make([]dto.KidResponse, 0, len(kids)),
		Staff:   make([]dto.StaffResponse, 0, len(staff)),
		Schools: make([]dto.SchoolResponse, 0, len(schools)),
		Vans:    make([]dto.VanConfigResponse, 0, len(vans)),
	}
	for _, k := range kids {
		res.Kids = append(res.Kids, dto.KidResponse{
			KidID:        k.KidID,
			Name:         k.Name,
			SchoolID:     k.SchoolID,
			NeedsBooster: planner.NeedsBooster(k, now),
		})
	}
	for _, st := range staff {
		res.Staff = append(res.Staff, dto.StaffResponse{StaffID: st.StaffID, Name: st.Name})
	}
	for _, sc := range schools {
		res.Schools = append(res.Schools, dto.SchoolResponse{
			SchoolID:      sc.SchoolID,
			Name:          sc.Name,
			Lat:           sc.Coords.Lat,
			Lng:           sc.Coords.Lng,
			DismissalTime: sc.DismissalTime,
		})
	}
	for _, v := range vans {
		res.Vans = append(res.Vans, dto.VanConfigResponse{
			VanID:        v.VanID,
			Name:         v.Name,
			Seats:        v.Seats,
			BoosterSeats: v.BoosterSeats,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
