package handlers

import (
	"net/http"

	"github.com/quickjob/quickjob/internal/handlers/render"
	"github.com/quickjob/quickjob/internal/handlers/userctx"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/service/auth"
)

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		FullName string `json:"full_name" validate:"required"`
		Role     string `json:"role" validate:"omitempty,oneof=CLIENT WORKER"`
	}

	type response struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Token    string `json:"token"`
		FullName string `json:"full_name"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Register(r.Context(), auth.RegisterParams{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
			Role:     req.Role,
		})
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSONWithStatus(w, response{
			ID:       user.ID.String(),
			Email:    user.Email,
			Role:     user.Role,
			Token:    token,
			FullName: user.FullName,
		}, http.StatusCreated)
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	type response struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
		Token string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			// No difference between unknown email and a wrong password
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		render.JSON(w, response{
			ID:    user.ID.String(),
			Email: user.Email,
			Role:  user.Role,
			Token: token,
		})
	})
}

func handleMe() http.Handler {
	type response struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		FullName string `json:"full_name"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			ID:       user.ID.String(),
			Email:    user.Email,
			Role:     user.Role,
			FullName: user.FullName,
		})
	})
}
