// Package archetype holds the closed set of developer archetypes the scoring
// model may assign, and the normalization used to match its free-text output.
package archetype

import (
	"strings"
	"unicode"

	"github.com/joescharf/gitval/internal/models"
)

// Archetype is one entry of the fixed archetype table.
type Archetype struct {
	Key         string
	Name        string
	Description string
	Color       string
}

// Info returns the display metadata carried on a DeveloperAssessment.
func (a Archetype) Info() models.ArchetypeInfo {
	return models.ArchetypeInfo{Name: a.Name, Description: a.Description, Color: a.Color}
}

// Default is returned by Lookup for any label outside the table.
const Default = "COASTER"

var table = []Archetype{
	{Key: "ARCHITECT", Name: "Architect", Description: "Designs systems, makes foundational decisions", Color: "emerald"},
	{Key: "SURGEON", Name: "Surgeon", Description: "Precise, high-impact changes with minimal footprint", Color: "emerald"},
	{Key: "JANITOR", Name: "Janitor", Description: "Cleans up technical debt, improves maintainability", Color: "blue"},
	{Key: "FEATURE_FACTORY", Name: "Feature Factory", Description: "Churns out features, quantity over quality", Color: "amber"},
	{Key: "FIREFIGHTER", Name: "Firefighter", Description: "Fixes bugs reactively, often their own", Color: "amber"},
	{Key: "COASTER", Name: "Coaster", Description: "Minimal impact, surface-level changes", Color: "rose"},
	{Key: "PERFECTIONIST", Name: "Perfectionist", Description: "Over-engineers, refactors endlessly", Color: "amber"},
	{Key: "RISING_STAR", Name: "Rising Star", Description: "Improving rapidly, high potential", Color: "purple"},
}

var byKey = func() map[string]Archetype {
	m := make(map[string]Archetype, len(table))
	for _, a := range table {
		m[a.Key] = a
	}
	return m
}()

// All returns the archetype table in display order.
func All() []Archetype {
	out := make([]Archetype, len(table))
	copy(out, table)
	return out
}

// Names returns the display names in table order.
func Names() []string {
	names := make([]string, len(table))
	for i, a := range table {
		names[i] = a.Name
	}
	return names
}

// Normalize converts a free-text label into a table key: upper-cased, a
// leading "THE" word dropped, and runs of whitespace, hyphens or underscores
// collapsed to a single underscore. "the  rising-star" -> "RISING_STAR".
func Normalize(label string) string {
	fields := strings.FieldsFunc(strings.ToUpper(label), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	if len(fields) > 1 && fields[0] == "THE" {
		fields = fields[1:]
	}
	return strings.Join(fields, "_")
}

// Lookup resolves a free-text label to its archetype. Labels that do not
// normalize to a known key resolve to the Coaster archetype.
func Lookup(label string) Archetype {
	if a, ok := byKey[Normalize(label)]; ok {
		return a
	}
	return byKey[Default]
}

// Known reports whether label normalizes to a key in the table.
func Known(label string) bool {
	_, ok := byKey[Normalize(label)]
	return ok
}
