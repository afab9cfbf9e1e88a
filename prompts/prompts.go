package prompts

import _ "embed"

// Embedded prompt files

//go:embed analyst_system.txt
var analystSystem string

// AnalystSystem returns the fixed role and response-format template used
// as the base of every assembled system prompt.
func AnalystSystem() string { return analystSystem }
