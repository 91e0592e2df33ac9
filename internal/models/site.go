package models

import (
	"fmt"

	"github.com/desertthunder/handoff/internal/shared"
)

// Site is a migrated site in the destination store.
type Site struct {
	base
	remoteID int64
	name     string
	homeURL  string
	iconURL  string
}

// NewSite creates a Site from its legacy counterpart.
func NewSite(sequence int, legacy LegacySite) *Site {
	return &Site{
		base:     newBase(sequence),
		remoteID: legacy.RemoteID,
		name:     legacy.Name,
		homeURL:  legacy.HomeURL,
		iconURL:  legacy.IconURL,
	}
}

func (s *Site) RemoteID() int64 { return s.remoteID }
func (s *Site) Name() string    { return s.name }
func (s *Site) HomeURL() string { return s.homeURL }
func (s *Site) IconURL() string { return s.iconURL }

func (s *Site) SetName(name string)   { s.name = name }
func (s *Site) SetHomeURL(url string) { s.homeURL = url }
func (s *Site) SetIconURL(url string) { s.iconURL = url }

// Legacy converts the site back into the legacy shape used by resolvers.
func (s *Site) Legacy() LegacySite {
	return LegacySite{RemoteID: s.remoteID, Name: s.name, HomeURL: s.homeURL, IconURL: s.iconURL}
}

// Validate requires a remote id and at least one of name or home URL to display.
func (s *Site) Validate() error {
	if s.remoteID <= 0 {
		return fmt.Errorf("%w: site remote id must be positive", shared.ErrValidation)
	}
	if s.name == "" && s.homeURL == "" {
		return fmt.Errorf("%w: site %d has neither name nor home url", shared.ErrValidation, s.remoteID)
	}
	return nil
}
