package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"petchat/internal/pet"
)

// The pet and chat endpoints return raw JSON payloads (not the code/message
// envelope) because the web client consumes them directly.

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

type createPetReq struct {
	Name              string   `json:"name" binding:"required"`
	PetType           string   `json:"pet_type" binding:"required"`
	Breed             string   `json:"breed"`
	Age               *int     `json:"age"`
	PersonalityTraits []string `json:"personality_traits"`
	FavoriteThings    []string `json:"favorite_things"`
	Quirks            string   `json:"quirks"`
}

func (h *Handler) CreatePet(c *gin.Context) {
	userID := userIDOrDefault(c.Query("user_id"))

	var req createPetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}

	p, err := h.PetSvc.Create(c.Request.Context(), userID, pet.CreateInput{
		Name:              req.Name,
		PetType:           req.PetType,
		Breed:             req.Breed,
		Age:               req.Age,
		PersonalityTraits: req.PersonalityTraits,
		FavoriteThings:    req.FavoriteThings,
		Quirks:            req.Quirks,
	})
	if err != nil {
		var verr *pet.ValidationError
		if errors.As(err, &verr) {
			detail(c, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		log.Printf("[CreatePet] user_id=%s err=%v", userID, err)
		detail(c, http.StatusInternalServerError, "failed to create pet")
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPets(c *gin.Context) {
	userID := userIDOrDefault(c.Query("user_id"))

	pets, err := h.PetSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[ListPets] user_id=%s err=%v", userID, err)
		detail(c, http.StatusInternalServerError, "failed to list pets")
		return
	}
	if pets == nil {
		pets = []pet.Pet{}
	}
	c.JSON(http.StatusOK, pets)
}

func (h *Handler) GetPet(c *gin.Context) {
	petID := c.Param("pet_id")

	p, err := h.PetSvc.GetByID(c.Request.Context(), petID)
	if err != nil {
		if errors.Is(err, pet.ErrNotFound) {
			detail(c, http.StatusNotFound, "Pet not found: "+petID)
			return
		}
		log.Printf("[GetPet] pet_id=%s err=%v", petID, err)
		detail(c, http.StatusInternalServerError, "failed to get pet")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePet(c *gin.Context) {
	petID := c.Param("pet_id")

	if err := h.PetSvc.Delete(c.Request.Context(), petID); err != nil {
		if errors.Is(err, pet.ErrNotFound) {
			detail(c, http.StatusNotFound, "Pet not found: "+petID)
			return
		}
		log.Printf("[DeletePet] pet_id=%s err=%v", petID, err)
		detail(c, http.StatusInternalServerError, "failed to delete pet")
		return
	}

	// History cascade; the pet row is already gone.
	if err := h.ChatSvc.ClearForDeletedPet(c.Request.Context(), petID); err != nil {
		log.Printf("[DeletePet] history cleanup pet_id=%s err=%v", petID, err)
	}

	c.Status(http.StatusNoContent)
}
