package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"pharmapool.backend/internal/config"
	"pharmapool.backend/pkg/jwt"
)

// devtoken mints a bearer token for local testing against the wallet API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	userFlag := flag.String("user", "", "user id (uuid); random when empty")
	email := flag.String("email", "dev@pharmapool.test", "email claim")
	role := flag.String("role", jwt.RoleUser, "role claim: user or admin")
	ttl := flag.Duration("ttl", cfg.JWT.AccessExpiry, "token lifetime")
	flag.Parse()

	userID, err := validateInputs(*userFlag, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}

	token, err := buildToken(cfg.JWT.Secret, *ttl, userID, *email, *role)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Printf("USER_ID=%s\n", userID)
	fmt.Printf("TOKEN=%s\n", token)
}

func validateInputs(user, role string, ttl time.Duration) (uuid.UUID, error) {
	if role != jwt.RoleUser && role != jwt.RoleAdmin {
		return uuid.Nil, fmt.Errorf("invalid role: %s (allowed: %s, %s)", role, jwt.RoleUser, jwt.RoleAdmin)
	}
	if ttl <= 0 {
		return uuid.Nil, fmt.Errorf("invalid ttl: %s", ttl)
	}
	if user == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(user)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", user, err)
	}
	return id, nil
}

func buildToken(secret string, ttl time.Duration, userID uuid.UUID, email, role string) (string, error) {
	return jwt.NewJWTService(secret, ttl).GenerateAccessToken(userID, email, role)
}
