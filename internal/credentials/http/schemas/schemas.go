// Package schemas embeds the request schema of every credentials action,
// one file per action name.
package schemas

import "embed"

//go:embed *.json
var FS embed.FS
