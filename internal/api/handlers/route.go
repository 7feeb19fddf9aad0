package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/api/dto"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/planner"
)

// RouteHandler exposes the planning session surface: load, gestures,
// explicit lifecycle transitions, save, and the latest routing artifacts.
// All session access funnels through the planner manager, which owns
// serialization.
type RouteHandler struct {
	Manager *planner.Manager
}

// Get loads (or creates) the session for ?date=YYYY-MM-DD and returns the
// full derived view.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	var res dto.RoutePlanResponse
	err := h.Manager.With(r.Context(), date, func(s *planner.Session) error {
		res = planView(s)
		return nil
	})
	if err != nil {
		zap.L().Error("load route failed", zap.String("date", date), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Gesture applies one drag/drop event to the session and returns the
// updated view, or the planner's user-facing rejection.
func (h *RouteHandler) Gesture(w http.ResponseWriter, r *http.Request) {
	var req dto.GestureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Date == "" {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}

	g := planner.Gesture{
		Source:      toContainer(req.Source),
		Destination: toContainer(req.Destination),
		EntityID:    req.EntityID,
		Kind:        planner.EntityKind(req.Kind),
		Confirmed:   req.Confirmed,
	}

	var res dto.RoutePlanResponse
	err := h.Manager.With(r.Context(), req.Date, func(s *planner.Session) error {
		if err := s.ApplyGesture(g); err != nil {
			return err
		}
		res = planView(s)
		return nil
	})
	if err != nil {
		writePlannerError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Send advances the session to waiting_to_start when fully assigned.
func (h *RouteHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req dto.DateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var res dto.RoutePlanResponse
	err := h.Manager.With(r.Context(), req.Date, func(s *planner.Session) error {
		if err := s.Send(); err != nil {
			return err
		}
		res = planView(s)
		return nil
	})
	if err != nil {
		writePlannerError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Reopen reverts a sent session to planning after user confirmation.
func (h *RouteHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	var req dto.ReopenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var res dto.RoutePlanResponse
	err := h.Manager.With(r.Context(), req.Date, func(s *planner.Session) error {
		if err := s.Reopen(req.Confirmed); err != nil {
			return err
		}
		res = planView(s)
		return nil
	})
	if err != nil {
		writePlannerError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Status records a lifecycle transition reported by the execution side.
func (h *RouteHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.Manager.With(r.Context(), req.Date, func(s *planner.Session) error {
		return s.ObserveStatus(domain.Status(req.Status))
	})
	if err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": req.Status})
}

// Save persists the session. Vans commit independently; a partial failure
// reports which vans did not save and leaves the session dirty.
func (h *RouteHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.DateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.Manager.Save(r.Context(), req.Date)
	if err != nil && len(report.FailedVans) == 0 {
		zap.L().Error("save route failed", zap.String("date", req.Date), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !report.Complete() {
		res := dto.SaveResponse{
			Saved:      false,
			FailedVans: report.FailedVans,
			Message:    "save did not complete for every van; changes are still pending",
		}
		writeJSON(w, r, http.StatusBadGateway, res)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SaveResponse{Saved: true})
}

// Path returns the latest routing artifacts for one van's current stop
// order, for map display. 204 when nothing is computed yet.
func (h *RouteHandler) Path(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	vanID := r.URL.Query().Get("van_id")
	if date == "" || vanID == "" {
		writeError(w, r, http.StatusBadRequest, "date and van_id are required")
		return
	}

	artifacts, err := h.Manager.Artifacts(r.Context(), date, vanID)
	if err != nil {
		zap.L().Error("load artifacts failed", zap.String("date", date), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if artifacts == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	res := dto.PathResponse{
		Fingerprint:     artifacts.Fingerprint,
		ForwardGeometry: artifacts.Forward.Geometry,
		ReturnGeometry:  artifacts.Return.Geometry,
		ForwardMinutes:  artifacts.ForwardTotal,
		ReturnMinutes:   artifacts.ReturnTotal,
		TotalMinutes:    artifacts.TotalMinutes,
	}
	for _, l := range artifacts.ForwardLegs {
		res.ForwardLegs = append(res.ForwardLegs, dto.LegResponse{Minutes: l.Minutes, Known: l.Known})
	}
	for _, l := range artifacts.ReturnLegs {
		res.ReturnLegs = append(res.ReturnLegs, dto.LegResponse{Minutes: l.Minutes, Known: l.Known})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// decodeBody enforces a single-object JSON POST body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writePlannerError maps the planner's error taxonomy onto HTTP statuses:
// confirmation prompts and guard rejections are 409, Send preconditions
// are 422, anything else is a real server error.
func writePlannerError(w http.ResponseWriter, r *http.Request, err error) {
	var confirm *planner.ConfirmationRequired
	if errors.As(err, &confirm) {
		writeJSON(w, r, http.StatusConflict, dto.ErrorResponse{
			Error:                confirm.Reason,
			ConfirmationRequired: true,
		})
		return
	}

	var rejection *planner.Rejection
	if errors.As(err, &rejection) {
		writeJSON(w, r, http.StatusConflict, dto.ErrorResponse{Error: rejection.Reason})
		return
	}

	var precondition *planner.PreconditionError
	if errors.As(err, &precondition) {
		writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: precondition.Reason})
		return
	}

	zap.L().Error("planner operation failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func toContainer(c dto.ContainerRequest) planner.Container {
	return planner.Container{
		Kind:  planner.ContainerKind(c.Kind),
		VanID: c.VanID,
		KidID: c.KidID,
		Index: c.Index,
	}
}

// planView flattens the session into the response DTO: stored state plus
// every derived view the presentation layer needs.
func planView(s *planner.Session) dto.RoutePlanResponse {
	now := time.Now()
	route := s.Route

	res := dto.RoutePlanResponse{
		Date:       route.Date,
		Status:     string(route.Status),
		OriginName: route.OriginName,
		Dirty:      route.Dirty,
	}

	for _, van := range route.Vans {
		vp := dto.VanPlanResponse{
			VanID:           van.VanID,
			Name:            van.Name,
			HelperIDs:       []string{},
			StaffInVan:      route.StaffInVan(van.VanID),
			SchoolOrder:     append([]string{}, route.SchoolOrder[van.VanID]...),
			SeatsLeft:       s.SeatsLeft(van.VanID),
			BoosterCount:    s.CountBoosters(van.VanID),
			OverCapacity:    s.IsOverCapacity(van.VanID),
			BoosterExceeded: s.IsBoosterExceeded(van.VanID),
			ETATotalMinutes: route.VanETA[van.VanID],
		}
		if d := route.Driver(van.VanID); d != nil {
			vp.DriverID = d.StaffID
		}
		for _, helper := range route.Helpers(van.VanID) {
			vp.HelperIDs = append(vp.HelperIDs, helper.StaffID)
		}
		for _, g := range s.GroupedBySchool(van.VanID) {
			gr := dto.SchoolGroupResponse{
				SchoolID: g.School.SchoolID,
				Name:     g.School.Name,
				StaffID:  g.StaffID,
			}
			for _, k := range g.Kids {
				gr.Kids = append(gr.Kids, kidView(k, now))
			}
			vp.Groups = append(vp.Groups, gr)
		}
		res.Vans = append(res.Vans, vp)
	}

	for _, k := range s.UnassignedKids() {
		res.UnassignedKids = append(res.UnassignedKids, kidView(k, now))
	}
	for _, st := range s.UnassignedStaff() {
		res.UnassignedStaff = append(res.UnassignedStaff, dto.StaffResponse{StaffID: st.StaffID, Name: st.Name})
	}
	for _, k := range route.Absents {
		res.Absents = append(res.Absents, kidView(k, now))
	}

	return res
}

func kidView(k domain.Kid, now time.Time) dto.KidResponse {
	return dto.KidResponse{
		KidID:        k.KidID,
		Name:         k.Name,
		SchoolID:     k.SchoolID,
		NeedsBooster: planner.NeedsBooster(k, now),
	}
}
