// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// privateKey and publicKey are used for signing and verifying session tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

// tokenLifetime bounds a player session token. A lobby run is expected to
// finish well inside this window.
const tokenLifetime = 12 * time.Hour

// Init generates a fresh ed25519 key pair at runtime. Tokens stop verifying
// across restarts; players rejoin with their lobby code.
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	return nil
}

// InitFromPath reads an ed25519 private/public key pair from file, for
// deployments where tokens must survive restarts.
func InitFromPath(privatePath, publicPath string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("read public key file: %w", err)
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	return nil
}

// CreatePlayerToken signs a session token binding a player to a lobby.
// Handed out on join; the websocket handler verifies it before attaching
// the connection to the lobby.
func CreatePlayerToken(playerID, lobbyID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":   playerID.String(),
		"lobby": lobbyID.String(),
		"exp":   time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticatePlayerToken verifies a session token and returns the player
// and lobby it was issued for.
func AuthenticatePlayerToken(tokenString string) (playerID, lobbyID uuid.UUID, err error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid jwt claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("missing sub in jwt")
	}
	lob, ok := claims["lobby"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("missing lobby in jwt")
	}

	playerID, err = uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed sub in jwt: %w", err)
	}
	lobbyID, err = uuid.Parse(lob)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed lobby in jwt: %w", err)
	}
	return playerID, lobbyID, nil
}
