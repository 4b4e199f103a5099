package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"raid_checker_backend/internal/model"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestJWTRoundTrip(t *testing.T) {
	account := &model.Account{Username: "moko", Role: model.Master}
	account.ID = 42

	token, err := GenerateJWT(account, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.AccountID != 42 || claims.Username != "moko" || claims.Role != model.Master {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("ParseJWT() with a wrong secret should fail")
	}

	expired, _ := GenerateJWT(account, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Error("ParseJWT() on an expired token should fail")
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("gate 3: %w", ErrGateCompletionNotFound), http.StatusNotFound},
		{ErrAlreadyCompleted, http.StatusConflict},
		{ErrCrossDifficultyConflict, http.StatusConflict},
		{fmt.Errorf("party: %w", ErrDuplicateAccount), http.StatusConflict},
		{ErrEmptyParty, http.StatusBadRequest},
		{fmt.Errorf("%w: 12 members", ErrInvalidPartySize), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrProviderUnavailable, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			RespondError(c, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestParseItemLevel(t *testing.T) {
	got, err := ParseItemLevel("1,680.83")
	if err != nil || got != 1680.83 {
		t.Errorf("ParseItemLevel() = %v, %v", got, err)
	}
	if _, err := ParseItemLevel("n/a"); err == nil {
		t.Error("ParseItemLevel(n/a) should fail")
	}
	if MustParseUint("abc") != 0 || MustParseUint("17") != 17 {
		t.Error("MustParseUint mismatch")
	}
}
