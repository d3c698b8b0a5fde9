package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/auth"
	"github.com/jimmitjoo/cinema/data"
)

const minPasswordLength = 8

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Register creates a new inactive account and mails an activation token
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if !govalidator.IsEmail(payload.Email) {
		api.Error(w, http.StatusBadRequest, "Invalid email address.")
		return
	}
	if len(payload.Password) < minPasswordLength {
		api.Error(w, http.StatusBadRequest, "Password must be at least 8 characters long.")
		return
	}

	if _, err := h.Users.GetByEmail(r.Context(), payload.Email); err == nil {
		api.Error(w, http.StatusConflict,
			"A user with this email "+payload.Email+" already exists.")
		return
	}

	groupID, err := h.Users.GroupID(r.Context(), data.GroupUser)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "Default user group not found.")
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred during user creation.")
		return
	}

	user, err := h.Users.Create(r.Context(), payload.Email, hash, groupID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred during user creation.")
		return
	}

	token := h.Signer.Sign(auth.PurposeActivation, user.Email)
	go func() {
		if err := h.Mail.SendActivation(user.Email, token, h.ActivationTTL); err != nil {
			h.Log.Error("sending activation email", map[string]interface{}{
				"email": user.Email, "error": err.Error(),
			})
		}
	}()

	api.JSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}

type activateRequest struct {
	Token string `json:"token"`
}

// Activate turns a valid activation token into an active account
func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	var payload activateRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	email, err := h.Signer.Verify(payload.Token, auth.PurposeActivation, h.ActivationTTL)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid or expired activation token.")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), email)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid or expired activation token.")
		return
	}

	if user.IsActive {
		api.Error(w, http.StatusBadRequest, "User account is already active.")
		return
	}

	if err := h.Users.Activate(r.Context(), user.ID); err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred during account activation.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"message": "User account activated successfully."})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login exchanges credentials for an access and refresh token pair
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, payload.Password) {
		api.Error(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	if !user.IsActive {
		api.Error(w, http.StatusForbidden, "User account is not activated.")
		return
	}

	accessToken, err := h.Tokens.CreateAccessToken(user.ID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	refreshToken, err := h.Tokens.CreateRefreshToken(user.ID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	expiresAt := time.Now().Add(h.Tokens.RefreshTTL())
	if err := h.Users.StoreRefreshToken(r.Context(), user.ID, refreshToken, expiresAt); err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusCreated, loginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a fresh access token from a stored refresh token
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	userID, err := h.Tokens.DecodeRefreshToken(payload.RefreshToken)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid or expired token.")
		return
	}

	if _, err := h.Users.GetRefreshToken(r.Context(), payload.RefreshToken); err != nil {
		api.Error(w, http.StatusUnauthorized, "Refresh token not found.")
		return
	}

	if _, err := h.Users.GetByID(r.Context(), userID); err != nil {
		api.Error(w, http.StatusNotFound, "User not found.")
		return
	}

	accessToken, err := h.Tokens.CreateAccessToken(userID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

// Logout deletes the stored refresh token
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if _, err := h.Tokens.DecodeRefreshToken(payload.RefreshToken); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid or expired token.")
		return
	}

	if err := h.Users.DeleteRefreshToken(r.Context(), payload.RefreshToken); err != nil {
		api.Error(w, http.StatusNotFound, "Refresh token not found.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset mails a reset token. The response never reveals
// whether the email is registered.
func (h *Handlers) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload passwordResetRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if user, err := h.Users.GetByEmail(r.Context(), payload.Email); err == nil && user.IsActive {
		token := h.Signer.Sign(auth.PurposePasswordReset, user.Email)
		go func() {
			if err := h.Mail.SendPasswordReset(user.Email, token, h.ResetTTL); err != nil {
				h.Log.Error("sending password reset email", map[string]interface{}{
					"email": user.Email, "error": err.Error(),
				})
			}
		}()
	}

	api.JSON(w, http.StatusOK, map[string]string{
		"message": "If you are registered, you will receive an email with instructions.",
	})
}

type passwordResetComplete struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// CompletePasswordReset sets a new password from a valid reset token
func (h *Handlers) CompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload passwordResetComplete
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	email, err := h.Signer.Verify(payload.Token, auth.PurposePasswordReset, h.ResetTTL)
	if err != nil || email != payload.Email {
		api.Error(w, http.StatusBadRequest, "Invalid email or token.")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid email or token.")
		return
	}

	if len(payload.Password) < minPasswordLength {
		api.Error(w, http.StatusBadRequest, "Password must be at least 8 characters long.")
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while resetting the password.")
		return
	}

	if err := h.Users.SetPassword(r.Context(), user.ID, hash); err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while resetting the password.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully."})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword lets an authenticated user rotate their password
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var payload changePasswordRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, payload.OldPassword) {
		api.Error(w, http.StatusBadRequest, "Invalid email or password.")
		return
	}

	if payload.OldPassword == payload.NewPassword {
		api.Error(w, http.StatusBadRequest, "New password must be different from old password.")
		return
	}

	if len(payload.NewPassword) < minPasswordLength {
		api.Error(w, http.StatusBadRequest, "Password must be at least 8 characters long.")
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while changing the password.")
		return
	}

	if err := h.Users.SetPassword(r.Context(), user.ID, hash); err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while changing the password.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully."})
}

type changeGroupRequest struct {
	Group string `json:"group"`
}

// ChangeUserGroup moves a user into another group (admin only)
func (h *Handlers) ChangeUserGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "user_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "User not found.")
		return
	}

	var payload changeGroupRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	groupID, err := h.Users.GroupID(r.Context(), payload.Group)
	if err != nil {
		api.Error(w, http.StatusNotFound, "User group not found.")
		return
	}

	if err := h.Users.SetGroup(r.Context(), userID, groupID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "User not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"message": "User group changed successfully."})
}

// ForceActivate activates a user without a token (admin only)
func (h *Handlers) ForceActivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "user_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "User not found.")
		return
	}

	if err := h.Users.Activate(r.Context(), userID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "User not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"message": "User activated successfully."})
}
