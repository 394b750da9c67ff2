package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{NewNotFound("Test"), http.StatusNotFound},
		{fmt.Errorf("signup: %w", ErrEmailRegistered), http.StatusConflict},
		{ErrInvalidOption, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleServiceError(c, tc.err)

		if w.Code != tc.code {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.code)
		}
		var resp Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Code != tc.code {
			t.Errorf("%v: body code = %d, want %d", tc.err, resp.Code, tc.code)
		}
	}
}

func TestNotFoundMessageNamesEntity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleServiceError(c, NewNotFound("User"))

	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message != "User not found" {
		t.Fatalf("message = %q", resp.Message)
	}
}
