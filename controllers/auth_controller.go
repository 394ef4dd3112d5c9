// File: /controllers/auth_controller.go
package controllers

import (
	"net/http"

	"clubnight-api/middleware"
	"clubnight-api/services"
	"clubnight-api/utils"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth  *services.AuthService
	oauth *services.OAuthService
}

func NewAuthController(auth *services.AuthService, oauth *services.OAuthService) *AuthController {
	return &AuthController{auth: auth, oauth: oauth}
}

type RequestLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"six_digit_code"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ConfirmPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

const badTypesMessage = "Please provide correct types for request."

func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	pictureStored, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	if req.ProfilePicture != "" && !pictureStored {
		utils.SendSuccess(c, "User registered without profile picture. Please try the upload again.", nil)
		return
	}
	utils.SendSuccess(c, "Registered successfully, welcome!", nil)
}

func (ac *AuthController) RequestLogin(c *gin.Context) {
	var req RequestLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.SendValidationError(c, "email and password are required")
		return
	}

	if err := ac.auth.RequestLogin(c.Request.Context(), req.Email, req.Password); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Your confirmation code has been sent to your email", nil)
}

func (ac *AuthController) ValidateLogin(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	pair, err := ac.auth.ValidateLogin(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Logged in successfully, welcome!",
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (ac *AuthController) RequestPasswordChange(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := ac.auth.RequestPasswordChange(c.Request.Context(), req.Email); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Your confirmation code has been sent to your email", nil)
}

func (ac *AuthController) ValidatePasswordChange(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := ac.auth.ValidatePasswordChange(c.Request.Context(), req.Email, req.Code); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Your password change request was successful. Please enter your new password.", nil)
}

func (ac *AuthController) ConfirmPasswordChange(c *gin.Context) {
	var req ConfirmPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, badTypesMessage)
		return
	}

	if err := ac.auth.ConfirmPasswordChange(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Your password change was successful. You can now login with your new password.", nil)
}

// RefreshToken issues a new access token from query parameters user_email and refresh_token.
func (ac *AuthController) RefreshToken(c *gin.Context) {
	email, refresh := c.Query("user_email"), c.Query("refresh_token")
	if email == "" || refresh == "" {
		utils.SendValidationError(c, "user_email and refresh_token are required")
		return
	}

	token, err := ac.auth.Refresh(c.Request.Context(), email, refresh)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context(), middleware.CurrentEmail(c)); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Logged out successfully.", nil)
}

// ThirdPartyLogin redirects to the provider named by type_of_service.
func (ac *AuthController) ThirdPartyLogin(c *gin.Context) {
	provider := c.Query("type_of_service")
	if provider == "" {
		utils.SendValidationError(c, "type_of_service is required")
		return
	}

	url, err := ac.oauth.AuthURL(c.Request.Context(), provider)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (ac *AuthController) ThirdPartyLoginConfirm(c *gin.Context) {
	login, err := ac.oauth.Confirm(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	message := "You're logged in successfully!"
	if login.PictureSkipped {
		message = "You're logged in successfully but we couldn't fetch your profile picture."
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       message,
		"token":         login.Tokens.AccessToken,
		"refresh_token": login.Tokens.RefreshToken,
	})
}
