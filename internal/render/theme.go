// Package render turns master data and drafted packages into the HTML
// documents the app serves, prints, and writes to dist/.
package render

import (
	_ "embed"
	"os"
)

//go:embed themes/default.css
var defaultThemeCSS string

//go:embed templates/base.html
var defaultBaseTemplate string

// LoadTheme reads the stylesheet at path, falling back to the embedded
// default when the path is empty or unreadable.
func LoadTheme(path string) string {
	if path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			return string(raw)
		}
	}
	return defaultThemeCSS
}

// LoadBaseTemplate reads the build template at path, falling back to the
// embedded default when the path is empty or unreadable.
func LoadBaseTemplate(path string) string {
	if path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			return string(raw)
		}
	}
	return defaultBaseTemplate
}
