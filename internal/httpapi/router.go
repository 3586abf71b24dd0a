package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petchat/internal/common"
	"petchat/internal/config"
	"petchat/internal/httpapi/handlers"
	"petchat/internal/httpapi/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/", h.Health)
	r.GET("/health", h.Health)
	r.GET("/ping", h.Ping)

	// accounts
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.Secret))
	authGroup.GET("/me", h.Me)

	// pets
	r.POST("/pets", h.CreatePet)
	r.GET("/pets", h.ListPets)
	r.GET("/pets/:pet_id", h.GetPet)
	r.DELETE("/pets/:pet_id", h.DeletePet)

	// chat
	r.POST("/chat", h.SendChatMessage)
	r.GET("/chat/:pet_id/history", h.GetChatHistory)
	r.DELETE("/chat/:pet_id/history", h.ClearChatHistory)

	// Async chat requires an account: jobs are owned rows and polling must
	// not leak other users' jobs.
	authGroup.POST("/chat/async", h.SendChatMessageAsync)
	// Not under /chat: the GET tree already has /chat/:pet_id/history and
	// gin rejects a static sibling for that segment.
	authGroup.GET("/jobs/:job_id", h.GetChatJob)

	return r
}
