package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Config holds what the provider client needs to connect.
type Config struct {
	ProjectID       string
	CredentialsPath string // пусто — Application Default Credentials
}

// Client is the explicitly constructed handle to the auth provider and the
// document database. Оно конструируется один раз в main и передается в
// зависимости — никаких импортируемых синглтонов на уровне модуля.
type Client struct {
	app       *firebase.App
	auth      *fbauth.Client
	firestore *firestore.Client
	logger    *zap.Logger
}

// Connect initializes the provider SDK and both service clients.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("FirebaseClient")

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения Auth client: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения Firestore client: %w", err)
	}

	logger.Info("Firebase clients initialized", zap.String("project", cfg.ProjectID))
	return &Client{app: app, auth: authClient, firestore: fsClient, logger: logger}, nil
}

// Auth returns the admin auth client.
func (c *Client) Auth() *fbauth.Client { return c.auth }

// Firestore returns the document database client.
func (c *Client) Firestore() *firestore.Client { return c.firestore }

// Close releases the underlying connections.
func (c *Client) Close() error {
	if c.firestore != nil {
		if err := c.firestore.Close(); err != nil {
			return fmt.Errorf("failed to close firestore client: %w", err)
		}
	}
	c.logger.Info("Firebase clients closed")
	return nil
}
