package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// NewTurnstileMiddleware guards public endpoints with Cloudflare turnstile
// when turnstile.enabled is set
func NewTurnstileMiddleware() gin.HandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(c *gin.Context) {
		if !viper.GetBool("turnstile.enabled") {
			c.Next()
			return
		}

		requestID := c.GetString("requestID")

		token := c.Request.Header.Get("TurnstileToken")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Missing or invalid turnstile token",
				"requestID": requestID,
			})
			return
		}

		ok, err := verifyTurnstile(c.Request.Context(), client, token, c.ClientIP())
		if err != nil {
			zap.L().Error("Failed to verify turnstile token", zap.String("requestID", requestID), zap.Error(err))
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}

func verifyTurnstile(ctx context.Context, client *http.Client, token, ip string) (bool, error) {
	jsonBody, err := json.Marshal(gin.H{
		"secret":   viper.GetString("turnstile.secret_token"),
		"response": token,
		"remoteip": ip,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, turnstileVerifyURL, bytes.NewReader(jsonBody))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var res turnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return false, err
	}

	return res.Success, nil
}
