package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTurnstileRouter() *gin.Engine {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.POST("/", NewTurnstileMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r
}

func TestTurnstileDisabled(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	w := httptest.NewRecorder()
	newTurnstileRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTurnstileMissingToken(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("turnstile.enabled", true)
	viper.Set("turnstile.secret_token", "secret")

	w := httptest.NewRecorder()
	newTurnstileRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "turnstile")
}
