// Command create-admin add admin account with given username, or a generated one, and print its credentials.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"gorm.io/gorm"

	"CareerFindr-backend/internal/config"
	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
)

// generateRandomString creates a random hex string of length 2n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

// generateUniqueUsername tries until a unique username is found
func generateUniqueUsername(db *gorm.DB) (string, error) {
	for {
		username := "admin_" + generateRandomString(4)
		var count int64
		if err := db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return username, nil
		}
	}
}

func main() {
	username := flag.String("username", "", "username of new admin, generated when empty")
	password := flag.String("password", "", "password of new admin, generated when empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}
	db, err := database.GetMainDB(cfg)
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}
	defer db.Close()

	if *username == "" {
		if *username, err = generateUniqueUsername(db.DB); err != nil {
			log.Fatalf("Failed to generate username: %s", err)
		}
	}
	if *password == "" {
		*password = generateRandomString(8)
	} else if len(*password) < 8 {
		log.Fatal("Password must be at least 8 characters")
	}

	if err := utilities.CreateAdmin(*password, *username, db.DB); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Username: %s\n", *username)
	fmt.Printf("Password: %s\n", *password)
	fmt.Println("======================================")
}
