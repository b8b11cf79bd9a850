package script

import (
	_ "embed"

	"github.com/valter-silva-au/eliza/internal/eliza"
)

//go:embed doctor1966.txt
var doctor1966 string

// Doctor1966 returns the text of the embedded 1966 DOCTOR script, the
// default when no script file is configured.
func Doctor1966() string { return doctor1966 }

// LoadDoctor parses the embedded DOCTOR script.
func LoadDoctor() (*eliza.Script, error) {
	return LoadString(doctor1966)
}
