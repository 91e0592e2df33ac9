package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/handoff/internal/shared"
)

// Account is the migrated account in the destination store.
type Account struct {
	base
	remoteID    int64
	username    string
	displayName string
	avatarURL   string
	accessToken string
}

// NewAccount creates an Account from its legacy counterpart.
func NewAccount(sequence int, legacy LegacyAccount) *Account {
	return &Account{
		base:        newBase(sequence),
		remoteID:    legacy.RemoteID,
		username:    legacy.Username,
		displayName: legacy.DisplayName,
		avatarURL:   legacy.AvatarURL,
		accessToken: legacy.AccessToken,
	}
}

func (a *Account) RemoteID() int64     { return a.remoteID }
func (a *Account) Username() string    { return a.username }
func (a *Account) DisplayName() string { return a.displayName }
func (a *Account) AvatarURL() string   { return a.avatarURL }
func (a *Account) AccessToken() string { return a.accessToken }

func (a *Account) SetDisplayName(name string) { a.displayName = name }
func (a *Account) SetAvatarURL(url string)    { a.avatarURL = url }
func (a *Account) SetAccessToken(tok string)  { a.accessToken = tok }

// Validate checks required account fields.
func (a *Account) Validate() error {
	switch {
	case a.remoteID <= 0:
		return fmt.Errorf("%w: account remote id must be positive", shared.ErrValidation)
	case strings.TrimSpace(a.username) == "":
		return fmt.Errorf("%w: account username is required", shared.ErrValidation)
	case a.accessToken == "":
		return fmt.Errorf("%w: account access token is required", shared.ErrValidation)
	}
	return nil
}
