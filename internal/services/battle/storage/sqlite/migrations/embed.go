package migrations

import "embed"

// Root is the directory inside FS holding the battle migrations.
const Root = "battle"

//go:embed battle/*.sql
var FS embed.FS
