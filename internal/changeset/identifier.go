package changeset

import (
	"fmt"
	"regexp"

	"github.com/montavis/atelier/pkg/types"
)

// identifierPattern matches safe bare SQL identifiers. Table and column
// names are interpolated into dynamically-built statements, so this
// guard is the sole injection defense of the engine: every name from
// configuration or from change-set keys passes through it before any
// string concatenation into a statement template.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertIdentifier fails with types.ErrInvalidIdentifier when name is
// not a safe bare identifier.
func AssertIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, name)
	}
	return nil
}
