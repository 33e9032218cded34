// Package nav holds the site's pages and the menu that moves between them.
// Every page is reachable from every other page; the current page is passed
// into each render rather than stored on the server.
package nav

import "strings"

type Page int

const (
	Home Page = iota
	Announcements
	Gallery
	Registration
)

// Pages lists every page in menu order.
var Pages = []Page{Home, Announcements, Gallery, Registration}

var pageNames = map[Page]string{
	Home:          "Home",
	Announcements: "Announcements",
	Gallery:       "Gallery",
	Registration:  "Registration",
}

var pagePaths = map[Page]string{
	Home:          "/",
	Announcements: "/announcements",
	Gallery:       "/gallery",
	Registration:  "/registration",
}

var pageTitles = map[Page]string{
	Home:          "Home",
	Announcements: "Announcements",
	Gallery:       "Gallery",
	Registration:  "Event Registration",
}

// Parse resolves a page name or path, ignoring case. Anything unknown is Home.
func Parse(value string) Page {
	value = strings.TrimSpace(value)
	for _, page := range Pages {
		if strings.EqualFold(value, pageNames[page]) ||
			strings.EqualFold(value, pagePaths[page]) ||
			strings.EqualFold(value, strings.TrimPrefix(pagePaths[page], "/")) {
			return page
		}
	}
	return Home
}

func (p Page) valid() Page {
	if _, ok := pageNames[p]; !ok {
		return Home
	}
	return p
}

func (p Page) String() string {
	return pageNames[p.valid()]
}

func (p Page) Path() string {
	return pagePaths[p.valid()]
}

// Title is the page heading.
func (p Page) Title() string {
	return pageTitles[p.valid()]
}

type MenuItem struct {
	Page   Page
	Name   string
	Path   string
	Active bool
}

// Menu returns the persistent page selector with current marked active.
func Menu(current Page) []MenuItem {
	current = current.valid()
	items := make([]MenuItem, 0, len(Pages))
	for _, page := range Pages {
		items = append(items, MenuItem{
			Page:   page,
			Name:   page.String(),
			Path:   page.Path(),
			Active: page == current,
		})
	}
	return items
}

type QuickLink struct {
	Label string
	Path  string
}

// QuickLinks are the home page shortcuts.
func QuickLinks() []QuickLink {
	return []QuickLink{
		{Label: "📢 Announcements", Path: Announcements.Path()},
		{Label: "🖼 Gallery", Path: Gallery.Path()},
		{Label: "📝 Registration", Path: Registration.Path()},
	}
}
