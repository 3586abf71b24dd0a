package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"petchat/internal/chat"
	"petchat/internal/config"
	"petchat/internal/httpapi/middleware"
	"petchat/internal/pet"
	"petchat/internal/store/rabbitmq"
	"petchat/internal/store/redisstore"
)

// defaultUserID keeps the API usable without an auth frontend, matching the
// demo behavior the web client was built against.
const defaultUserID = "demo-user"

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	PetSvc  *pet.Service
	ChatSvc *chat.Service

	// Limiter may be nil (no Redis configured): no rate limiting.
	Limiter *redisstore.Limiter
	// Rabbit may be nil: async chat endpoints report unavailable.
	Rabbit *rabbitmq.Publisher
}

func NewHandler(db *gorm.DB, cfg config.Config, petSvc *pet.Service, chatSvc *chat.Service, limiter *redisstore.Limiter, rabbit *rabbitmq.Publisher) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		PetSvc:  petSvc,
		ChatSvc: chatSvc,
		Limiter: limiter,
		Rabbit:  rabbit,
	}
}

func userIDOrDefault(v string) string {
	if v == "" {
		return defaultUserID
	}
	return v
}

// authUserID returns the token-derived user id for routes behind
// AuthRequired, rendered as a string because chat rows key users that way.
func authUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	uid, ok := v.(uint64)
	if !ok {
		return "", false
	}
	return strconv.FormatUint(uid, 10), true
}
