package resources

import "embed"

//go:embed i18n/*.yml
var FS embed.FS
