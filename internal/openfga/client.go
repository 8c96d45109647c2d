// Package openfga mirrors the staff-property access relation into an OpenFGA
// store for fine-grained authorization checks. The explicit access list on
// the staff record stays the source of truth; when disabled the client is a
// pass-through.
package openfga

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"

	"github.com/rBrown1405/zentry-pos-sub001/internal/config"
)

const (
	relationAccess = "access"
	objectProperty = "property"
)

type Client struct {
	fga    *client.OpenFgaClient
	config config.OpenFGAConfig
}

func NewClient(cfg config.OpenFGAConfig) (*Client, error) {
	if !cfg.Enabled {
		slog.Info("OpenFGA is disabled, access checks run against the access list only")
		return &Client{config: cfg}, nil
	}

	fgaClient, err := client.NewSdkClient(&client.ClientConfiguration{
		ApiHost: cfg.APIHost,
		StoreId: cfg.StoreID,
		Credentials: &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{
				ApiToken: cfg.APIToken,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenFGA client: %w", err)
	}

	c := &Client{fga: fgaClient, config: cfg}
	if err := c.verifyConnection(); err != nil {
		return nil, fmt.Errorf("failed to verify OpenFGA connection: %w", err)
	}

	slog.Info("OpenFGA client initialized", "store_id", cfg.StoreID, "model_id", cfg.ModelID)
	return c, nil
}

func (c *Client) verifyConnection() error {
	ctx := context.Background()

	response, err := c.fga.GetStore(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to get store: %w", err)
	}
	if response.Id != c.config.StoreID {
		return fmt.Errorf("store ID mismatch: expected %s, got %s", c.config.StoreID, response.Id)
	}

	modelResponse, err := c.fga.ReadAuthorizationModel(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to read authorization model: %w", err)
	}
	if modelResponse.AuthorizationModel.Id != c.config.ModelID {
		slog.Warn("Authorization model ID mismatch",
			"expected", c.config.ModelID,
			"actual", modelResponse.AuthorizationModel.Id)
	}

	return nil
}

// IsEnabled is nil-safe so callers can carry an unconfigured client.
func (c *Client) IsEnabled() bool {
	return c != nil && c.config.Enabled && c.fga != nil
}

// CheckAccess asks OpenFGA whether the staff member holds the access
// relation on the property. Pass-through true when disabled.
func (c *Client) CheckAccess(ctx context.Context, staffID, propertyID string) (bool, error) {
	if !c.IsEnabled() {
		return true, nil
	}

	data, err := c.fga.Check(ctx).Body(client.ClientCheckRequest{
		User:     fmt.Sprintf("user:%s", staffID),
		Relation: relationAccess,
		Object:   fmt.Sprintf("%s:%s", objectProperty, propertyID),
	}).Execute()
	if err != nil {
		slog.Error("OpenFGA check failed", "staff_id", staffID, "property_id", propertyID, "error", err)
		return false, err
	}
	return data.GetAllowed(), nil
}

// GrantAccess writes the access tuple for a staff/property pair.
func (c *Client) GrantAccess(ctx context.Context, staffID, propertyID string) error {
	if !c.IsEnabled() {
		return nil
	}

	_, err := c.fga.Write(ctx).Body(client.ClientWriteRequest{
		Writes: []client.ClientTupleKey{
			{
				User:     fmt.Sprintf("user:%s", staffID),
				Relation: relationAccess,
				Object:   fmt.Sprintf("%s:%s", objectProperty, propertyID),
			},
		},
	}).Execute()
	if err != nil {
		slog.Error("OpenFGA grant failed", "staff_id", staffID, "property_id", propertyID, "error", err)
		return err
	}
	return nil
}

// RevokeAccess deletes the access tuple for a staff/property pair.
func (c *Client) RevokeAccess(ctx context.Context, staffID, propertyID string) error {
	if !c.IsEnabled() {
		return nil
	}

	_, err := c.fga.Write(ctx).Body(client.ClientWriteRequest{
		Deletes: []client.ClientTupleKeyWithoutCondition{
			{
				User:     fmt.Sprintf("user:%s", staffID),
				Relation: relationAccess,
				Object:   fmt.Sprintf("%s:%s", objectProperty, propertyID),
			},
		},
	}).Execute()
	if err != nil {
		slog.Error("OpenFGA revoke failed", "staff_id", staffID, "property_id", propertyID, "error", err)
		return err
	}
	return nil
}
