package config

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// NewMessagingClient initializes the Firebase messaging client once per
// process. The service-account key arrives base64-encoded in the environment.
func NewMessagingClient(cfg *Config) (*messaging.Client, error) {
	decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to decode firebase credentials: %w", err)
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	return app.Messaging(ctx)
}
