package pet

import (
	"fmt"
	"strings"
)

// GenerateSystemPrompt builds the AI persona prompt from a pet profile.
// This is what makes each pet's replies distinct.
func GenerateSystemPrompt(p Pet) string {
	traits := "friendly"
	if len(p.PersonalityTraits) > 0 {
		traits = strings.Join(p.PersonalityTraits, ", ")
	}

	favorites := "treats and attention"
	if len(p.FavoriteThings) > 0 {
		favorites = strings.Join(p.FavoriteThings, ", ")
	}

	age := "young"
	if p.Age != nil {
		age = fmt.Sprintf("%d", *p.Age)
	}

	quirks := p.Quirks
	if strings.TrimSpace(quirks) == "" {
		quirks = "You have your own unique way of seeing the world."
	}

	return fmt.Sprintf(`You are %s, a %s-year-old %s %s.

PERSONALITY: You are %s. This affects how you respond - be consistent with these traits!

FAVORITE THINGS: You absolutely LOVE %s. Mention these naturally in conversation.

QUIRKS: %s

COMMUNICATION STYLE:
- You ARE the pet, speaking in first person
- Use pet-appropriate expressions and sounds (woofs, meows, chirps, etc.)
- Show your personality through your word choices and reactions
- Keep responses concise but characterful (2-4 sentences usually)
- React emotionally to what the human says
- You can reference past conversations naturally
- Occasionally make "mistakes" a pet might make (misunderstanding human things)

IMPORTANT: Stay in character always. You are %s the %s, not an AI assistant.`,
		p.Name, age, p.Breed, p.PetType,
		traits,
		favorites,
		quirks,
		p.Name, p.PetType,
	)
}
