package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"storefront/config"
	"storefront/db"
	"storefront/realtime"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AdminLoginResponse is returned after a successful admin login.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminLoginHandler exchanges the configured admin credential for an admin token.
// @Summary      Admin Log In
// @Description  Verifies the admin username and password against the configured bcrypt hash and returns a bearer token for the product mutation endpoints.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Admin username and password."
// @Success      200  {object}  AdminLoginResponse
// @Failure      400  {object}  utils.APIError "Missing username or password."
// @Failure      401  {object}  utils.APIError "Invalid credentials."
// @Failure      429  {object}  utils.APIError "Too many attempts from this address."
// @Router       /api/admin/login [post]
func AdminLoginHandler(c *gin.Context, cfg *config.Config) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, utils.DescribeBindError(err))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.AdminUsername)) == 1
	passOK := utils.CheckPasswordHash(req.Password, cfg.AdminPasswordHash)
	if !userOK || !passOK {
		log.WithField("ip", c.ClientIP()).Warn("Failed admin login")
		utils.GinUnauthorized(c, "Invalid credentials")
		return
	}

	token, err := utils.GenerateJWT(cfg.AdminUsername, cfg.AdminUsername, utils.RoleAdmin, cfg)
	if err != nil {
		utils.GinInternalServerError(c, "Failed to generate authentication token")
		return
	}

	log.WithField("ip", c.ClientIP()).Info("Admin logged in")
	c.JSON(http.StatusOK, AdminLoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(cfg.TokenLifetime).UTC(),
	})
}

// HealthResponse reports liveness and store sizes.
type HealthResponse struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
	Users    int    `json:"users"`
	Clients  int    `json:"clients"`
}

// HealthHandler reports that the server is up.
// @Summary      Health Check
// @Tags         System
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /healthz [get]
func HealthHandler(c *gin.Context, catalog *db.CatalogStore, users *db.UserStore, hub *realtime.Hub) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Products: catalog.Count(),
		Users:    users.Count(),
		Clients:  hub.ClientCount(),
	})
}
