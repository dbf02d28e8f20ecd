package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreadcrumb(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "/about.html", expected: "about"},
		{path: "/get-involved.html", expected: "get involved"},
		{path: "/pages/our-team.html?ref=nav", expected: "our team"},
		{path: "/index.html", expected: "Home"},
		{path: "/", expected: "Home"},
		{path: "", expected: "Home"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Breadcrumb(tt.path))
		})
	}
}

func TestIsActive(t *testing.T) {
	assert.True(t, IsActive("/site/contact.html", "contact.html"))
	assert.False(t, IsActive("/site/contact.html", "about.html"))
	assert.True(t, IsActive("/", ""))
}

func TestMobileNav(t *testing.T) {
	var nav MobileNav
	assert.False(t, nav.Open())

	assert.True(t, nav.Toggle())
	nav.Click(true)
	assert.True(t, nav.Open(), "clicks inside the header keep it open")

	nav.Click(false)
	assert.False(t, nav.Open())

	nav.Toggle()
	nav.LinkClicked()
	assert.False(t, nav.Open())

	nav.Toggle()
	assert.False(t, nav.Toggle())
}
