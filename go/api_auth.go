package ventrestserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersports "github.com/Apurer/ventrest-api/internal/domains/users/ports"
)

// AuthAPI wires HTTP transport with the users bounded context.
type AuthAPI struct {
	service usersports.Service
}

// NewAuthAPI creates an AuthAPI backed by the provided service.
func NewAuthAPI(service usersports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /api/auth/register
// Creates an account and signs the caller in
func (api *AuthAPI) Register(c *gin.Context) {
	var payload RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	profile := ProfileRequest{
		Name:         payload.Name,
		Phone:        payload.Phone,
		BusinessName: payload.BusinessName,
		Address:      payload.Address,
	}.toProfile()
	session, err := api.service.Register(c.Request.Context(), usersports.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
		Profile:  profile,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromSession(session))
}

// Post /api/auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	session, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromSession(session))
}

// Post /api/auth/logout
// Revokes the presented token
func (api *AuthAPI) Logout(c *gin.Context) {
	token, _ := bearerToken(c)
	if err := api.service.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	user, err := api.service.Me(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromUser(user))
}

// Put /api/auth/profile
func (api *AuthAPI) UpdateProfile(c *gin.Context) {
	var payload ProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.UpdateProfile(c.Request.Context(), callerFrom(c), payload.toProfile())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromUser(user))
}

// Delete /api/auth/me
// Deactivates the caller's account
func (api *AuthAPI) Deactivate(c *gin.Context) {
	if err := api.service.Deactivate(c.Request.Context(), callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
