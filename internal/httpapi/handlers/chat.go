package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petchat/internal/chat"
	"petchat/internal/common"
	"petchat/internal/pet"
)

type sendMessageReq struct {
	PetID   string `json:"pet_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	userID := userIDOrDefault(c.Query("user_id"))

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}

	allowed, err := h.Limiter.Allow(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[SendChatMessage] rate limit check user_id=%s err=%v", userID, err)
	}
	if !allowed {
		detail(c, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}

	reply, err := h.ChatSvc.SendMessage(c.Request.Context(), userID, req.PetID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, pet.ErrNotFound):
			detail(c, http.StatusNotFound, "Pet not found: "+req.PetID)
		case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
			detail(c, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("[SendChatMessage] pet_id=%s err=%v", req.PetID, err)
			detail(c, http.StatusInternalServerError, "Chat failed: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (h *Handler) GetChatHistory(c *gin.Context) {
	petID := c.Param("pet_id")

	limit, _ := strconv.Atoi(c.Query("limit"))

	hist, err := h.ChatSvc.History(c.Request.Context(), petID, limit)
	if err != nil {
		if errors.Is(err, pet.ErrNotFound) {
			detail(c, http.StatusNotFound, "Pet not found: "+petID)
			return
		}
		log.Printf("[GetChatHistory] pet_id=%s err=%v", petID, err)
		detail(c, http.StatusInternalServerError, "failed to get chat history")
		return
	}
	c.JSON(http.StatusOK, hist)
}

func (h *Handler) ClearChatHistory(c *gin.Context) {
	petID := c.Param("pet_id")

	if err := h.ChatSvc.Clear(c.Request.Context(), petID); err != nil {
		if errors.Is(err, pet.ErrNotFound) {
			detail(c, http.StatusNotFound, "Pet not found: "+petID)
			return
		}
		log.Printf("[ClearChatHistory] pet_id=%s err=%v", petID, err)
		detail(c, http.StatusInternalServerError, "failed to clear chat history")
		return
	}
	c.Status(http.StatusNoContent)
}

// SendChatMessageAsync enqueues a reply job instead of blocking on the
// provider; clients poll GET /jobs/:job_id.
func (h *Handler) SendChatMessageAsync(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	// Validate up front so queued jobs cannot fail on bad input.
	if err := chat.ValidateContent(req.Message); err != nil {
		common.Fail(c, http.StatusUnprocessableEntity, 10003, err.Error())
		return
	}
	if _, err := h.PetSvc.GetByID(c.Request.Context(), req.PetID); err != nil {
		if errors.Is(err, pet.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "pet not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async chat not configured")
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	j := &chat.Job{
		ID:     jobID,
		UserID: userID,
		PetID:  req.PetID,
		Prompt: req.Message,
		Status: chat.JobQueued,
	}
	if err := h.ChatSvc.CreateJob(c.Request.Context(), j); err != nil {
		log.Printf("[SendChatMessageAsync] CreateJob pet_id=%s job_id=%s err=%v", req.PetID, jobID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if err := h.Rabbit.PublishJob(c.Request.Context(), j.ID); err != nil {
		log.Printf("[SendChatMessageAsync] PublishJob job_id=%s err=%v", j.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
		return
	}

	common.OK(c, gin.H{"job_id": j.ID})
}

func (h *Handler) GetChatJob(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.ChatSvc.GetJob(c.Request.Context(), jobID)
	if err != nil || j.UserID != userID {
		// Other users' jobs look absent, same as missing ones.
		common.Fail(c, http.StatusNotFound, 40402, "job not found")
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":                j.ID,
			"pet_id":            j.PetID,
			"status":            j.Status,
			"result_message_id": j.ResultMessageID,
			"error":             j.Error,
			"created_at":        j.CreatedAt,
			"updated_at":        j.UpdatedAt,
		},
	})
}
