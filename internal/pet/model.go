package pet

import "time"

// PetType enumerates the supported pet categories.
const (
	TypeDog     = "dog"
	TypeCat     = "cat"
	TypeBird    = "bird"
	TypeRabbit  = "rabbit"
	TypeHamster = "hamster"
	TypeFish    = "fish"
	TypeReptile = "reptile"
	TypeOther   = "other"
)

// Traits is the fixed personality vocabulary.
var Traits = []string{
	"playful", "grumpy", "lazy", "energetic", "curious",
	"shy", "mischievous", "affectionate", "sassy", "dramatic",
}

type Pet struct {
	ID     string `gorm:"primaryKey;type:varchar(8)" json:"id"`
	UserID string `gorm:"type:varchar(64);index;not null" json:"user_id"`

	Name              string   `gorm:"type:varchar(50);not null" json:"name"`
	PetType           string   `gorm:"type:varchar(16);not null" json:"pet_type"`
	Breed             string   `gorm:"type:varchar(50)" json:"breed,omitempty"`
	Age               *int     `json:"age,omitempty"`
	PersonalityTraits []string `gorm:"serializer:json;type:text" json:"personality_traits"`
	FavoriteThings    []string `gorm:"serializer:json;type:text" json:"favorite_things"`
	Quirks            string   `gorm:"type:varchar(500)" json:"quirks,omitempty"`

	// SystemPrompt is the AI persona, generated once at creation.
	SystemPrompt string `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Pet) TableName() string { return "pets" }

func validType(t string) bool {
	switch t {
	case TypeDog, TypeCat, TypeBird, TypeRabbit, TypeHamster, TypeFish, TypeReptile, TypeOther:
		return true
	}
	return false
}

func validTrait(t string) bool {
	for _, known := range Traits {
		if t == known {
			return true
		}
	}
	return false
}
