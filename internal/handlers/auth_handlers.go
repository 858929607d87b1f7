package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/services"
	"github.com/pablocarmonaesparza/education-sub001/pkg/httputil"
)

// AuthHandler handles authentication related HTTP requests.
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// HandleSignup creates a new user account.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("ERROR: signup failed: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Tier:  user.Tier,
	})
}

// HandleLogin verifies credentials and issues an access token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			httputil.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("ERROR: login failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AuthResponse{
		AccessToken: token,
		User: models.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Tier:  user.Tier,
		},
	})
}
