package chat

import "time"

const (
	RoleUser = "user"
	RolePet  = "pet"
)

// Message is one history entry. Autoincrement ids give the append order;
// there is no other ordering key.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	PetID     string    `gorm:"type:varchar(8);index;not null" json:"-"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"-"`
	Role      string    `gorm:"type:varchar(8);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

func (Message) TableName() string { return "chat_messages" }
