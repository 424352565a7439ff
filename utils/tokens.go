package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"

	"github.com/kataras/iris/v12/middleware/jwt"
)

var bgContext = context.Background()

// AccessToken is the claims payload of the staff access token.
type AccessToken struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateTokenPair signs an access/refresh pair for a staff user and records
// the refresh token in redis so it can be revoked.
func CreateTokenPair(user *models.User) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 365*24*time.Hour)

	role := user.Role
	if role == "" {
		role = "agent"
	}

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: user.ID, Role: role})
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.Claims{Subject: strconv.FormatUint(uint64(user.ID), 10)}
	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	storage.Redis.Set(bgContext, string(refreshToken), "true", 365*24*time.Hour+5*time.Minute)

	return &tokenPair, nil
}

// RefreshTokenValid checks the redis allowlist; revoked or unknown tokens
// fail even when the signature still verifies.
func RefreshTokenValid(token string) bool {
	_, err := storage.Redis.Get(bgContext, token).Result()
	return err == nil
}

// RevokeRefreshToken drops the token from the allowlist (logout).
func RevokeRefreshToken(token string) {
	storage.Redis.Del(bgContext, token)
}
