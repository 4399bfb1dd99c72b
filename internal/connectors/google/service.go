package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewDriveService creates a Google Drive API service.
// An empty token creates an unauthenticated client, which only works against
// public folders or a test endpoint. A non-empty endpoint replaces the API base URL.
func NewDriveService(ctx context.Context, token, endpoint string) (*drive.Service, error) {
	var opts []option.ClientOption
	if token == "" {
		opts = append(opts, option.WithoutAuthentication())
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return drive.NewService(ctx, opts...)
}
