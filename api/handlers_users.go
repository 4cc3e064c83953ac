package api

import (
	"net/http"
	"strconv"

	"storefront/config"
	"storefront/db"
	"storefront/models"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// --- Register ---

// RegisterRequest defines the expected body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string            `json:"message"`
	UserID  int64             `json:"userId"`
	User    models.PublicUser `json:"user"`
}

// RegisterHandler creates a shopper account.
// @Summary      Register a User
// @Description  Creates an account. Usernames and emails are unique (case-insensitive). The password is stored as a bcrypt hash and never returned.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user body RegisterRequest true "Account details."
// @Success      201  {object}  RegisterResponse
// @Failure      400  {object}  utils.APIError "Missing field, invalid email or short password."
// @Failure      409  {object}  utils.APIError "Username or email already exists."
// @Failure      429  {object}  utils.APIError "Too many attempts from this address."
// @Router       /api/users/register [post]
func RegisterHandler(c *gin.Context, users *db.UserStore) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, utils.DescribeBindError(err))
		return
	}

	user, err := users.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondStoreError(c, err, "User not found", "register user")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		UserID:  user.ID,
		User:    user.Public(),
	})
}

// --- Login ---

// LoginRequest defines the expected body for user and admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful user login.
type LoginResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

// LoginHandler authenticates a shopper and issues a user token.
// @Summary      Log In
// @Description  Verifies the username and password and returns the public user record together with a bearer token for the user endpoints.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Username and password."
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  utils.APIError "Missing username or password."
// @Failure      401  {object}  utils.APIError "Invalid credentials."
// @Failure      429  {object}  utils.APIError "Too many attempts from this address."
// @Router       /api/users/login [post]
func LoginHandler(c *gin.Context, users *db.UserStore, cfg *config.Config) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, utils.DescribeBindError(err))
		return
	}

	user, err := users.Authenticate(req.Username, req.Password)
	if err != nil {
		log.WithField("username", req.Username).Info("Failed user login")
		respondStoreError(c, err, "Invalid credentials", "log in")
		return
	}

	token, err := utils.GenerateJWT(strconv.FormatInt(user.ID, 10), user.Username, utils.RoleUser, cfg)
	if err != nil {
		utils.GinInternalServerError(c, "Failed to generate authentication token")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token,
	})
}

// --- Get User ---

// GetUserHandler returns the public record of the authenticated user.
// @Summary      Get a User
// @Description  Returns the public user record including search history. A user may only read their own record.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.PublicUser
// @Failure      401  {object}  utils.APIError "Missing or invalid user token."
// @Failure      403  {object}  utils.APIError "The token belongs to another user."
// @Failure      404  {object}  utils.APIError "No user has this id."
// @Router       /api/users/{id} [get]
func GetUserHandler(c *gin.Context, users *db.UserStore) {
	id, ok := authorizedUserID(c)
	if !ok {
		return
	}

	user, found := users.Get(id)
	if !found {
		utils.GinNotFound(c, "User not found")
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// --- Search History ---

// SearchHistoryRequest defines the expected body for recording a search.
type SearchHistoryRequest struct {
	SearchTerm string `json:"searchTerm" binding:"required"`
}

// SearchHistoryResponse carries the user's history after a change.
type SearchHistoryResponse struct {
	Message       string               `json:"message"`
	SearchHistory []models.SearchEntry `json:"searchHistory"`
}

// AddSearchHistoryHandler records a search term for the user.
// @Summary      Record a Search
// @Description  Prepends the term to the user's search history. The history keeps the 20 most recent entries, newest first.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int                   true  "User ID"
// @Param        search  body  SearchHistoryRequest  true  "The search term."
// @Success      200  {object}  SearchHistoryResponse
// @Failure      400  {object}  utils.APIError "Missing search term."
// @Failure      401  {object}  utils.APIError "Missing or invalid user token."
// @Failure      403  {object}  utils.APIError "The token belongs to another user."
// @Failure      404  {object}  utils.APIError "No user has this id."
// @Router       /api/users/{id}/search-history [put]
func AddSearchHistoryHandler(c *gin.Context, users *db.UserStore) {
	id, ok := authorizedUserID(c)
	if !ok {
		return
	}

	var req SearchHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, utils.DescribeBindError(err))
		return
	}

	user, err := users.AppendSearch(id, req.SearchTerm)
	if err != nil {
		respondStoreError(c, err, "User not found", "update search history")
		return
	}

	c.JSON(http.StatusOK, SearchHistoryResponse{
		Message:       "Search history updated",
		SearchHistory: user.SearchHistory,
	})
}

// ClearSearchHistoryHandler empties the user's search history.
// @Summary      Clear Search History
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  SearchHistoryResponse
// @Failure      401  {object}  utils.APIError "Missing or invalid user token."
// @Failure      403  {object}  utils.APIError "The token belongs to another user."
// @Failure      404  {object}  utils.APIError "No user has this id."
// @Router       /api/users/{id}/search-history [delete]
func ClearSearchHistoryHandler(c *gin.Context, users *db.UserStore) {
	id, ok := authorizedUserID(c)
	if !ok {
		return
	}

	user, err := users.ClearSearchHistory(id)
	if err != nil {
		respondStoreError(c, err, "User not found", "clear search history")
		return
	}

	c.JSON(http.StatusOK, SearchHistoryResponse{
		Message:       "Search history cleared",
		SearchHistory: user.SearchHistory,
	})
}

// authorizedUserID parses :id and checks that it matches the token subject.
func authorizedUserID(c *gin.Context) (int64, bool) {
	id, ok := pathID(c)
	if !ok {
		return 0, false
	}
	subject, ok := utils.SubjectUserID(c)
	if !ok {
		utils.GinUnauthorized(c, "User token required")
		return 0, false
	}
	if subject != id {
		utils.GinForbidden(c, "You can only access your own account")
		return 0, false
	}
	return id, true
}
