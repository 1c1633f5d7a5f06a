// internal/quiz/archetype.go
package quiz

// Archetype is one of the seven fixed quiz outcomes.
type Archetype string

const (
	Builder  Archetype = "BUILDER"
	Healer   Archetype = "HEALER"
	Seeker   Archetype = "SEEKER"
	Shepherd Archetype = "SHEPHERD"
	Catalyst Archetype = "CATALYST"
	Creator  Archetype = "CREATOR"
	Anchor   Archetype = "ANCHOR"
)

// DefaultArchetype is returned when no forced-choice question was answered.
const DefaultArchetype = Seeker

// archetypeOrder is the canonical enumeration order. Tie-breaking depends on
// it: the earliest archetype among equal top tallies wins.
var archetypeOrder = []Archetype{
	Builder,
	Healer,
	Seeker,
	Shepherd,
	Catalyst,
	Creator,
	Anchor,
}

// Archetypes returns the canonical ordering of all archetypes.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypeOrder))
	copy(out, archetypeOrder)
	return out
}

// IsValidArchetype reports whether s names one of the seven archetypes.
func IsValidArchetype(s string) bool {
	for _, a := range archetypeOrder {
		if string(a) == s {
			return true
		}
	}
	return false
}
