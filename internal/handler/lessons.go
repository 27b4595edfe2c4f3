package handler

import (
	"net/http"
)

func (h *Handler) GetLessonStaff(w http.ResponseWriter, r *http.Request) {
	lessonID, err := urlID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	staffIDs, err := h.lessonStaff.Members(r.Context(), campIDFrom(r.Context()), lessonID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取课程教职员成功", map[string]any{
		"lessonID": lessonID,
		"staffIDs": staffIDs,
	})
}

func (h *Handler) ReplaceLessonStaff(w http.ResponseWriter, r *http.Request) {
	lessonID, err := urlID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 空数组表示清空，缺少字段则视为请求不完整
	var req struct {
		StaffIDs []int64 `json:"staffIDs" validate:"required,dive,gt=0"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	change, err := h.lessonStaff.ReplaceAll(r.Context(), campIDFrom(r.Context()), lessonID, req.StaffIDs)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "课程教职员已替换", change)
}
