// Package petchat is the Go client for the PetChat REST API: thin request
// wrappers for the pet and chat endpoints, and a session Controller that
// keeps one conversation's visible message sequence consistent across
// optimistic local writes and confirmed server state.
package petchat

import "time"

// Message roles as stored server-side.
const (
	RoleUser = "user"
	RolePet  = "pet"
)

// Pet is a pet profile as returned by the API.
type Pet struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	PetType           string    `json:"pet_type"`
	Breed             string    `json:"breed,omitempty"`
	Age               *int      `json:"age,omitempty"`
	PersonalityTraits []string  `json:"personality_traits"`
	FavoriteThings    []string  `json:"favorite_things"`
	Quirks            string    `json:"quirks,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewPet is the payload for creating a pet profile; the server assigns the
// id and timestamps.
type NewPet struct {
	Name              string   `json:"name"`
	PetType           string   `json:"pet_type"`
	Breed             string   `json:"breed,omitempty"`
	Age               *int     `json:"age,omitempty"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	FavoriteThings    []string `json:"favorite_things,omitempty"`
	Quirks            string   `json:"quirks,omitempty"`
}

// ChatMessage is one entry of a conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type chatRequest struct {
	PetID   string `json:"pet_id"`
	Message string `json:"message"`
}

type chatReply struct {
	PetID     string    `json:"pet_id"`
	PetName   string    `json:"pet_name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type chatHistory struct {
	PetID    string        `json:"pet_id"`
	PetName  string        `json:"pet_name"`
	Messages []ChatMessage `json:"messages"`
}
