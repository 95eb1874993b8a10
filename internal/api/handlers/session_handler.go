package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/services"
	"github.com/yoockh/mentorloop/internal/utils"
)

type SessionHandler struct {
	svc     services.SessionService
	booking services.BookingService
}

func NewSessionHandler(svc services.SessionService, booking services.BookingService) *SessionHandler {
	return &SessionHandler{svc: svc, booking: booking}
}

type BookSessionRequest struct {
	MentorshipRequestID string               `json:"mentorship_request_id" binding:"required"`
	SlotStart           time.Time            `json:"slot_start" binding:"required"`
	Medium              models.SessionMedium `json:"medium" binding:"required"` // chat|video
}

type RecapRequest struct {
	Recap string `json:"recap"`
}

type RatingRequest struct {
	Rating int `json:"rating" binding:"required"`
}

func (h *SessionHandler) Book(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Book", "invalid request body", err))
		return
	}

	sess, err := h.booking.Book(c.Request.Context(), services.BookingRequest{
		MentorID:            c.Param("mentor_id"),
		ActorID:             userID,
		MentorshipRequestID: req.MentorshipRequestID,
		SlotStart:           req.SlotStart,
		Medium:              req.Medium,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Complete(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Recap(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RecapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Recap", "invalid request body", err))
		return
	}

	side := models.RecapSide(c.Param("side"))
	sess, err := h.svc.RecordRecap(c.Request.Context(), c.Param("session_id"), userID, side, req.Recap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Rate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Rate", "rating is required", err))
		return
	}

	res, err := h.svc.RecordRating(c.Request.Context(), c.Param("session_id"), userID, req.Rating)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) Upcoming(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.ListUpcoming(c.Request.Context(), userID, listRole(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *SessionHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.ListHistory(c.Request.Context(), userID, listRole(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *SessionHandler) Events(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.Events(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}
