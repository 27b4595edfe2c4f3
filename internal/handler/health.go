package handler

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.errorResponse(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "数据库不可用")
			return
		}
	}

	h.successResponse(w, r, "ok", nil)
}
