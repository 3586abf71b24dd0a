package db

import (
	"log"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"petchat/internal/chat"
	"petchat/internal/models"
	"petchat/internal/pet"
)

// Connect opens the database and runs migrations. A DSN containing "@tcp("
// is treated as MySQL, anything else as a sqlite path.
func Connect(dsn string) *gorm.DB {
	var (
		gdb *gorm.DB
		err error
	)
	if strings.Contains(dsn, "@tcp(") {
		gdb, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		gdb, err = gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if err := gdb.AutoMigrate(&models.User{}, &pet.Pet{}, &chat.Message{}, &chat.Job{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}
