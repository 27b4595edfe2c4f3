package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

// bedFilter 解析 ?room_id=&bed_id=，bed_id 可以重复出现或用逗号分隔
func bedFilter(r *http.Request) (domain.BedFilter, error) {
	filter := domain.BedFilter{}
	query := r.URL.Query()

	if roomParam := query.Get("room_id"); roomParam != "" {
		roomID, err := parseID(roomParam)
		if err != nil {
			return filter, fmt.Errorf("%w: room_id", err)
		}
		filter.RoomID = &roomID
	}

	if values, ok := query["bed_id"]; ok {
		filter.BedIDs = make([]int64, 0, len(values))
		for _, value := range values {
			for _, part := range strings.Split(value, ",") {
				bedID, err := parseID(strings.TrimSpace(part))
				if err != nil {
					return filter, fmt.Errorf("%w: bed_id", err)
				}
				filter.BedIDs = append(filter.BedIDs, bedID)
			}
		}
	}

	return filter, nil
}

func (h *Handler) GetBedAvailability(w http.ResponseWriter, r *http.Request) {
	filter, err := bedFilter(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	beds, err := h.beds.Available(r.Context(), campIDFrom(r.Context()), filter)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可用床位成功", beds)
}

func (h *Handler) GetBedOccupancy(w http.ResponseWriter, r *http.Request) {
	filter, err := bedFilter(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	beds, err := h.beds.Occupancy(r.Context(), campIDFrom(r.Context()), filter)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取床位占用情况成功", beds)
}

func (h *Handler) AdmitOccupant(w http.ResponseWriter, r *http.Request) {
	bedID, err := urlID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var req struct {
		OccupantID int64 `json:"occupantID" validate:"required,gt=0"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, err := h.beds.Admit(r.Context(), campIDFrom(r.Context()), bedID, req.OccupantID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "入住成功", assignment)
}

func (h *Handler) EndAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := urlID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, err := h.beds.Vacate(r.Context(), campIDFrom(r.Context()), assignmentID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "退房成功", assignment)
}
