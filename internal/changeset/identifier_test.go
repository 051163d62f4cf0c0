package changeset

import (
	"errors"
	"testing"

	"github.com/montavis/atelier/pkg/types"
)

func TestAssertIdentifier(t *testing.T) {
	valid := []string{"steps", "audit_steps", "_private", "Table2", "a"}
	for _, name := range valid {
		if err := AssertIdentifier(name); err != nil {
			t.Errorf("AssertIdentifier(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"2steps",
		"steps; DROP TABLE steps",
		"steps--",
		`steps"`,
		"steps'",
		"table name",
		"таблица",
	}
	for _, name := range invalid {
		err := AssertIdentifier(name)
		if !errors.Is(err, types.ErrInvalidIdentifier) {
			t.Errorf("AssertIdentifier(%q) = %v, want ErrInvalidIdentifier", name, err)
		}
	}
}
