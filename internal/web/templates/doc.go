// Package templates holds the HTML fragments returned to htmx requests.
// The components are written in .templ files; run `templ generate` after
// editing them.
package templates
