package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/groupcal/reminder-service/internal/pkg/jwt"
)

type contextKey string

const contextKeyCaller = contextKey("caller")

func (a *Api) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			a.unauthorizedResponse(w, r, errors.New("no token provided"))
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		subject, err := a.jwts.GetSubjectFromToken(token)
		if err != nil {
			invalidTokenErr := &jwt.InvalidTokenError{}
			switch {
			case errors.As(err, &invalidTokenErr):
				a.unauthorizedResponse(w, r, invalidTokenErr)
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		callerCtx := context.WithValue(r.Context(), contextKeyCaller, subject)
		next.ServeHTTP(w, r.WithContext(callerCtx))
	})
}
