package services

import (
	"context"
)

// ProfileService fetches the profile of the account being moved.
type ProfileService interface {
	// Profile returns the profile of the account the client is authenticated as.
	Profile(ctx context.Context) (*Profile, error)

	// Name returns the name of the service
	Name() string
}

// Profile is the account as the new service sees it.
type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
