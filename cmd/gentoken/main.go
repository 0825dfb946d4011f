package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Chirp/internal/auth"
)

// gentoken mints an HS256 session token for local development.
// The server must run with the same AUTH_HS256_SECRET.
//
// Usage:
//
//	AUTH_HS256_SECRET=dev-secret go run ./cmd/gentoken -sub user_dev -username dev
func main() {
	sub := flag.String("sub", "user_dev", "user id (sub claim)")
	username := flag.String("username", "dev", "username claim")
	firstName := flag.String("first-name", "", "first name claim")
	image := flag.String("image", "", "profile image URL claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("AUTH_HS256_SECRET")
	if secret == "" {
		log.Fatal("AUTH_HS256_SECRET is required")
	}

	now := time.Now()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *sub,
			Issuer:    os.Getenv("AUTH_ISSUER"),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
		Username: *username,
		ImageURL: *image,
	}
	if *firstName != "" {
		claims.FirstName = firstName
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
