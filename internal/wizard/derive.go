package wizard

// SiteResolver turns a [SiteRef] into what the Welcome screen shows.
type SiteResolver interface {
	Resolve(ref SiteRef) SiteSummary
}

// SiteResolverFunc adapts a function to [SiteResolver].
type SiteResolverFunc func(ref SiteRef) SiteSummary

func (f SiteResolverFunc) Resolve(ref SiteRef) SiteSummary { return f(ref) }

// AvatarSizer rewrites an avatar URL for display.
type AvatarSizer func(url string) string

// Snapshot is an immutable view of the three derivation inputs.
type Snapshot struct {
	Status                    Status
	AdvancedPastWelcome       bool
	AdvancedPastNotifications bool
}

// Deriver maps a [Snapshot] to a [Screen].
//
// A nil Resolver yields summaries carrying only the id; a nil Avatar leaves avatar URLs unchanged.
type Deriver struct {
	Resolver SiteResolver
	Avatar   AvatarSizer
}

// Derive returns the screen for s. The boolean is false when no screen should be emitted,
// in which case the caller keeps whatever screen it currently shows.
func (d Deriver) Derive(s Snapshot) (Screen, bool) {
	switch st := s.Status.(type) {
	case nil, NotStarted:
		return LoadingScreen{}, true
	case InProgress:
		return WelcomeScreen{
			AvatarURL: d.avatar(st.AvatarURL),
			Sites:     d.resolve(st.Sites),
			Busy:      s.AdvancedPastWelcome,
		}, true
	case Succeeded:
		switch {
		case s.AdvancedPastWelcome && !s.AdvancedPastNotifications:
			return NotificationsScreen{}, true
		case s.AdvancedPastWelcome && s.AdvancedPastNotifications:
			return DoneScreen{}, true
		default:
			return nil, false
		}
	case Failed:
		return ErrorScreen{Kind: Generic}, true
	}
	return nil, false
}

func (d Deriver) avatar(url string) string {
	if d.Avatar == nil || url == "" {
		return url
	}
	return d.Avatar(url)
}

func (d Deriver) resolve(refs []SiteRef) []SiteSummary {
	sites := make([]SiteSummary, 0, len(refs))
	for _, ref := range refs {
		if d.Resolver == nil {
			sites = append(sites, SiteSummary{ID: int64(ref)})
			continue
		}
		sites = append(sites, d.Resolver.Resolve(ref))
	}
	return sites
}
