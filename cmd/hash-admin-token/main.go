package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/tablesim/internal/admin"
)

// Prints the bcrypt hash to set as ADMIN_TOKEN_HASH for the token given as
// the first argument or in ADMIN_TOKEN.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		adminToken = os.Args[1]
	}
	if adminToken == "" {
		log.Fatal("usage: hash-admin-token <token> (or set ADMIN_TOKEN)")
	}
	if len(adminToken) < 16 {
		log.Printf("WARNING: admin token is shorter than 16 characters")
	}

	hash, err := admin.HashAdminToken(adminToken)
	if err != nil {
		log.Fatalf("Failed to hash admin token: %v", err)
	}

	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
	log.Println("Send the plain token in the X-Admin-Token header to use /api/v1/admin")
}
