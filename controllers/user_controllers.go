package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// Login exchanges username and password for a JWT.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	user, err := uc.Users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.InfoLogger.WithField("username", input.Username).Warn("Failed login attempt")
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("Login successful")

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": user.Role,
		"user":      user,
	})
}

// Logout revokes the caller's token for the rest of its lifetime.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	expiry := time.Now().Add(utils.TokenTTL)
	if v, ok := c.Get(middlewares.ContextClaims); ok {
		if claims, ok := v.(*utils.CustomClaims); ok && claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
	}
	utils.BlacklistToken(token, expiry)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.Users.Get(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"user":         user,
		"capabilities": policy.Capabilities(user.Role),
	})
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Users.List(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var input services.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := uc.Users.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.Infof("New user created: %s (role=%s)", user.Username, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := uc.Users.Update(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated", user)
}
