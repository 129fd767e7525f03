// Command admin is an operator CLI for account maintenance that talks
// to the database directly, bypassing the API.
package main

import (
	"fmt"
	"log"
	"os"

	"wegochat/backend/internal/config"
	"wegochat/backend/internal/models"
	"wegochat/backend/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	s := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "create-user":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin create-user <username> <password>")
			os.Exit(1)
		}
		if err := createUser(s, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created.\n", os.Args[2])
	case "set-password":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-password <username> <new_password>")
			os.Exit(1)
		}
		if err := setPassword(s, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error setting password: %v", err)
		}
		fmt.Printf("Password for %s updated.\n", os.Args[2])
	case "show-user":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin show-user <username>")
			os.Exit(1)
		}
		if err := showUser(s, os.Args[2]); err != nil {
			log.Fatalf("Error loading user: %v", err)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: admin <create-user|set-password|show-user> [args]")
	os.Exit(1)
}

func createUser(s storage.Storage, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.CreateUser(&models.User{Username: username, PasswordHash: string(hash)})
}

func setPassword(s storage.Storage, username, password string) error {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.UpdatePassword(user.ID, string(hash))
}

func showUser(s storage.Storage, username string) error {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return err
	}
	fmt.Printf("id:       %s\n", user.ID)
	fmt.Printf("username: %s\n", user.Username)
	fmt.Printf("nickname: %s\n", user.Nickname)
	fmt.Printf("friends:  %d\n", len(user.Friends))
	fmt.Printf("created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
