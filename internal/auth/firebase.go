package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseProvider verifies Firebase ID tokens and stores roles as custom
// user claims
type FirebaseProvider struct {
	client *fbauth.Client
}

func NewFirebase(ctx context.Context, projectID, clientEmail, privateKey string) (*FirebaseProvider, error) {
	if projectID == "" || clientEmail == "" || privateKey == "" {
		return nil, errors.New("firebase project id, client email and private key are required")
	}

	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   projectID,
		"client_email": clientEmail,
		"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app, %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client, %w", err)
	}

	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, unauthenticated(errors.New("empty token"))
	}

	token, err := p.client.VerifyIDToken(ctx, tokenStr)
	if err != nil {
		return nil, unauthenticated(err)
	}

	raw := map[string]any{"uid": token.UID}
	for k, v := range token.Claims {
		raw[k] = v
	}

	return claimsFromMap(raw)
}

// SetRole replaces the custom claims of the user
func (p *FirebaseProvider) SetRole(ctx context.Context, uid, role string) error {
	return p.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": role})
}
