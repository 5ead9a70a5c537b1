package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	list := []string{"Monday", "Tuesday", "Friday"}
	assert.True(t, Contains("Monday", list))
	assert.False(t, Contains("Sunday", list))
	assert.False(t, Contains("monday", list))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Jean Dupont", NormalizeName("  Jean   Dupont "))
	assert.Equal(t, "", NormalizeName("   "))
}

func runResponseHelper(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func TestResponseHelpers_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		fn     func(c *gin.Context)
		status int
	}{
		{"success", func(c *gin.Context) {
			CallSuccessOK(c, APISuccessParams{Msg: "ok"})
		}, http.StatusOK},
		{"created", func(c *gin.Context) {
			CallSuccessCreated(c, APISuccessParams{Msg: "created"})
		}, http.StatusCreated},
		{"user error", func(c *gin.Context) {
			CallUserError(c, APIErrorParams{Msg: "bad", Err: fmt.Errorf("bad input")})
		}, http.StatusBadRequest},
		{"not found", func(c *gin.Context) {
			CallErrorNotFound(c, APIErrorParams{Msg: "missing", Err: fmt.Errorf("not found")})
		}, http.StatusNotFound},
		{"conflict", func(c *gin.Context) {
			CallConflictError(c, APIErrorParams{Msg: "taken", Err: fmt.Errorf("slot taken")})
		}, http.StatusConflict},
		{"unauthorized", func(c *gin.Context) {
			CallUserNotAuthorized(c, APIErrorParams{Msg: "no", Err: fmt.Errorf("no session")})
		}, http.StatusUnauthorized},
		{"forbidden", func(c *gin.Context) {
			CallUserForbidden(c, APIErrorParams{Msg: "no", Err: fmt.Errorf("role denied")})
		}, http.StatusForbidden},
		{"server error", func(c *gin.Context) {
			CallServerError(c, APIErrorParams{Msg: "boom", Err: fmt.Errorf("db down")})
		}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := runResponseHelper(tc.fn)
			assert.Equal(t, tc.status, w.Code)

			var resp APIResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.status < 400, resp.Success)
		})
	}
}
