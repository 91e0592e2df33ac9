package services

import (
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/wizard"
)

// SiteResolver implements [wizard.SiteResolver] over sites read from the legacy store.
//
// Unknown references resolve to a summary carrying only the id.
type SiteResolver struct {
	mu       sync.RWMutex
	sites    map[wizard.SiteRef]models.LegacySite
	iconSize int
}

func NewSiteResolver(iconSize int, sites ...models.LegacySite) *SiteResolver {
	r := &SiteResolver{sites: make(map[wizard.SiteRef]models.LegacySite), iconSize: iconSize}
	r.Add(sites...)
	return r
}

// Add makes sites resolvable, replacing any with the same remote id.
func (r *SiteResolver) Add(sites ...models.LegacySite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range sites {
		r.sites[wizard.SiteRef(s.RemoteID)] = s
	}
}

func (r *SiteResolver) Resolve(ref wizard.SiteRef) wizard.SiteSummary {
	r.mu.RLock()
	site, ok := r.sites[ref]
	r.mu.RUnlock()
	if !ok {
		return wizard.SiteSummary{ID: int64(ref)}
	}
	return Summarize(site, r.iconSize)
}

// Summarize builds the display row for a site.
//
// The name falls back to the displayed home URL.
func Summarize(site models.LegacySite, iconSize int) wizard.SiteSummary {
	home := displayURL(site.HomeURL)
	name := strings.TrimSpace(site.Name)
	if name == "" {
		name = home
	}
	return wizard.SiteSummary{
		ID:      site.RemoteID,
		Name:    name,
		URL:     home,
		IconURL: ResizeIcon(site.IconURL, iconSize),
	}
}

// displayURL drops the scheme and trailing slash from a home URL, or returns the host when it has no path.
func displayURL(home string) string {
	if home == "" {
		return ""
	}
	u, err := url.Parse(home)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(home, "/")
	}
	if u.Path == "" || u.Path == "/" {
		return u.Host
	}
	return u.Host + strings.TrimSuffix(u.Path, "/")
}
