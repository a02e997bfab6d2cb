package utils

import (
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
)

var JwtSecret []byte

func init() {
	// It's okay if the .env file isn't found; environment variables may be set elsewhere
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("JWT_SECRET is not set, falling back to the insecure default")
		secret = "supersecret"
	}

	JwtSecret = []byte(secret)
}

// GenerateToken creates a signed access token for a user session
func GenerateToken(userID, role, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(), // Access token valid for 1 hour
	})

	return token.SignedString(JwtSecret)
}
