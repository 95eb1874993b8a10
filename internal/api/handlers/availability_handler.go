package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mentorloop/internal/services"
)

type AvailabilityHandler struct {
	svc services.AvailabilityService
	loc *time.Location
}

func NewAvailabilityHandler(svc services.AvailabilityService, loc *time.Location) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{svc: svc, loc: loc}
}

type AvailabilityResponse struct {
	MentorID string      `json:"mentor_id"`
	TimeZone string      `json:"timezone"`
	Slots    []time.Time `json:"slots"`
}

func (h *AvailabilityHandler) FreeSlots(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	mentorID := c.Param("mentor_id")
	slots, err := h.svc.FreeSlots(c.Request.Context(), mentorID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.In(h.loc))
	}
	c.JSON(http.StatusOK, AvailabilityResponse{
		MentorID: mentorID,
		TimeZone: h.loc.String(),
		Slots:    out,
	})
}
