package site

import (
	"path"
	"strings"
)

const homeLabel = "Home"

// CurrentPage is the last segment of a URL path, as used for nav links.
func CurrentPage(urlPath string) string {
	if i := strings.IndexAny(urlPath, "?#"); i >= 0 {
		urlPath = urlPath[:i]
	}
	if urlPath == "" || strings.HasSuffix(urlPath, "/") {
		return ""
	}
	return path.Base(urlPath)
}

// Breadcrumb returns the label shown for the current page:
// "get-involved.html" becomes "get involved", the index page is "Home".
func Breadcrumb(urlPath string) string {
	name := strings.Replace(CurrentPage(urlPath), ".html", "", 1)
	name = strings.ReplaceAll(name, "-", " ")
	if name == "" || name == "index" {
		return homeLabel
	}
	return name
}

// IsActive reports whether a nav link points at the current page.
func IsActive(urlPath, href string) bool {
	return CurrentPage(urlPath) == href
}

// MobileNav is the open/closed state of the collapsible header menu.
type MobileNav struct {
	open bool
}

func (n *MobileNav) Open() bool { return n.open }

func (n *MobileNav) Toggle() bool {
	n.open = !n.open
	return n.open
}

// LinkClicked closes the menu after navigation.
func (n *MobileNav) LinkClicked() {
	n.open = false
}

// Click handles a click anywhere on the page; clicks outside the header
// close the menu.
func (n *MobileNav) Click(insideHeader bool) {
	if !insideHeader {
		n.open = false
	}
}
