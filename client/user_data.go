package client

import (
	"context"

	"github.com/pkg/errors"

	"github.com/campushq/go-placement-client/userdata"
)

// FetchUserData reads a user's full profile document. The payload is
// validated by the cache layer before it is trusted.
func (c *SessionClient) FetchUserData(ctx context.Context, userID string) (*userdata.Document, error) {
	if userID == "" {
		return nil, errors.New("[SessionClient.FetchUserData] userID is required")
	}
	var doc userdata.Document
	if err := c.Get(ctx, "/student/user/"+userID, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
