package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/handoff/internal/wizard"
)

var (
	_ list.Item = siteItem{}
)

// siteItem wraps [wizard.SiteSummary] to implement [list.Item].
type siteItem struct {
	site wizard.SiteSummary
}

func (i siteItem) FilterValue() string { return i.site.Name }
func (i siteItem) Title() string {
	if i.site.Name == "" {
		return i.Description()
	}
	return i.site.Name
}
func (i siteItem) Description() string {
	if i.site.URL == "" {
		return "site " + strconv.FormatInt(i.site.ID, 10)
	}
	return i.site.URL
}

func siteItems(sites []wizard.SiteSummary) []list.Item {
	items := make([]list.Item, len(sites))
	for i, s := range sites {
		items[i] = siteItem{site: s}
	}
	return items
}

func newSiteList(sites []wizard.SiteSummary, width, height int) list.Model {
	l := list.New(siteItems(sites), list.NewDefaultDelegate(), width, height)
	l.Title = "Sites"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}
