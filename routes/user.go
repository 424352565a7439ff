package routes

import (
	"os"
	"strconv"

	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a staff account and issues an access/refresh pair.
func Login(ctx iris.Context) {
	var input LoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid email or password", ctx)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid email or password", ctx)
		return
	}

	tokenPair, err := utils.CreateTokenPair(&user)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"id":         user.ID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"role":       user.Role,
		"tokens":     tokenPair,
	})
}

// RefreshToken exchanges a valid refresh token for a fresh pair. The old
// refresh token is revoked so each one works once.
func RefreshToken(ctx iris.Context) {
	var input utils.RefreshTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.RefreshToken == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "missing refresh_token", ctx)
		return
	}
	if !utils.RefreshTokenValid(input.RefreshToken) {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid or revoked refresh token", ctx)
		return
	}

	verifier := jwt.NewVerifier(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"))
	verifiedToken, err := verifier.VerifyToken([]byte(input.RefreshToken))
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid refresh token", ctx)
		return
	}
	var claims jwt.Claims
	if err := verifiedToken.Claims(&claims); err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid refresh token", ctx)
		return
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid refresh token", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, uint(userID)).Error; err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Unknown user", ctx)
		return
	}

	utils.RevokeRefreshToken(input.RefreshToken)
	tokenPair, err := utils.CreateTokenPair(&user)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(tokenPair)
}

// Logout revokes the caller's refresh token.
func Logout(ctx iris.Context) {
	var input utils.RefreshTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.RefreshToken != "" {
		utils.RevokeRefreshToken(input.RefreshToken)
	}
	ctx.JSON(iris.Map{"deleted": true})
}
