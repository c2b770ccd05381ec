// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// login issues a token for the configured credential.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "El cuerpo de la solicitud no es JSON válido.")
		return
	}
	if !s.validCredential(req.Username, req.Password) {
		log.Infow("login refused", "request_id", requestID(r.Context()), "username", req.Username)
		writeMessage(w, http.StatusUnauthorized, "Credenciales inválidas.")
		return
	}
	token, err := s.issueToken(req.Username, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (s *Server) validCredential(username, password string) bool {
	if s.auth.Username == "" || s.auth.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.auth.Password)) == 1
	return userOK && passOK
}

func (s *Server) issueToken(subject string, now time.Time) (string, error) {
	if s.auth.Secret == "" {
		return "", errors.New("no JWT secret configured")
	}
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.auth.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.auth.TokenTTL))),
	}
	if s.auth.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.auth.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.auth.Secret))
}

// validateToken checks the signature, expiry, issuer and audience of a
// bearer token and returns its subject.
func (s *Server) validateToken(tokenString string) (string, error) {
	if s.auth.Secret == "" {
		return "", errors.New("authentication not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if s.auth.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.auth.Issuer))
	}
	if s.auth.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.auth.Audience))
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.auth.Secret), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// requireToken rejects requests without a valid bearer token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeMessage(w, http.StatusUnauthorized, "Falta el token de autorización.")
			return
		}
		subject, err := s.validateToken(strings.TrimSpace(raw))
		if err != nil {
			log.Infow("token refused", "request_id", requestID(r.Context()), "err", err)
			writeMessage(w, http.StatusUnauthorized, "Token inválido o expirado.")
			return
		}
		log.Debugw("token accepted", "request_id", requestID(r.Context()), "subject", subject)
		next.ServeHTTP(w, r)
	})
}
