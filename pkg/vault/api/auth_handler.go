package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/localvault/localvault/pkg/vault/auth"
)

type authHandler struct {
	service *auth.Service
}

type requestOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (h *authHandler) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, auth.ErrInvalidPhone)
		return
	}
	if err := h.service.RequestVerification(r.Context(), req.PhoneNumber); err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{
		"status":  "success",
		"message": "verification code sent",
	})
}

func (h *authHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, auth.ErrInvalidCode)
		return
	}
	pair, err := h.service.ConfirmVerification(r.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (h *authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	pair, err := h.service.RefreshSession(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// authValidity lets a client check whether its access token is still
// usable without performing a real operation.
func (h *authHandler) authValidity(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	render.JSON(w, r, map[string]any{
		"status":  "success",
		"user_id": user.ID,
	})
}
