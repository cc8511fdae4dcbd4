// Package firebase builds the Firebase clients used for API authentication and bot sessions.
package firebase

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/cupitman9/finanzas-bot/internal/model"
)

type Client struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// NewClient falls back to Application Default Credentials when credentialsFile is empty.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("error creating auth client: %w", err)
	}

	return &Client{Auth: authClient, Firestore: fs}, nil
}

func (c *Client) Close() error {
	return c.Firestore.Close()
}

// TokenVerifier checks Firebase ID tokens for the HTTP API.
type TokenVerifier struct {
	auth *auth.Client
}

func NewTokenVerifier(authClient *auth.Client) *TokenVerifier {
	return &TokenVerifier{auth: authClient}
}

func (v *TokenVerifier) Verify(ctx context.Context, bearer string) (*model.Identity, error) {
	token, err := v.auth.VerifyIDToken(ctx, strings.TrimSpace(bearer))
	if err != nil {
		return nil, fmt.Errorf("error verifying token: %w", err)
	}
	email, _ := token.Claims["email"].(string)
	return &model.Identity{Subject: token.UID, Email: email}, nil
}
