package auth

import (
	"embed"
)

//go:embed data/templates
var templatesFS embed.FS

// GetTemplatesFS returns the mail template files for this package
func GetTemplatesFS() embed.FS {
	return templatesFS
}
