package handler

import (
	"net/http"
)

func (h *Handler) GetBookingWindowStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.bookingWindow.Probe(r.Context(), campIDFrom(r.Context()))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预订窗口状态成功", result)
}

func (h *Handler) ReconcileBookingWindow(w http.ResponseWriter, r *http.Request) {
	result, err := h.bookingWindow.Reconcile(r.Context(), campIDFrom(r.Context()))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "预订窗口已同步", result)
}

func (h *Handler) OverrideBookingActive(w http.ResponseWriter, r *http.Request) {
	sittingID, err := urlID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var req struct {
		IsBookingActive *bool `json:"isBookingActive" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sitting, err := h.bookingWindow.Override(r.Context(), campIDFrom(r.Context()), sittingID, *req.IsBookingActive)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "餐次预订状态已更新", sitting)
}
