package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEntityType is returned when an entity type name is not recognized
var ErrUnknownEntityType = errors.New("unknown entity type")

// EntityType is one of the legally meaningful categories a word can be annotated with
type EntityType string

const (
	EntityTemei     EntityType = "Temei"     // Legal grounds (articles, ordinances, codes)
	EntityProba     EntityType = "Proba"     // Evidence offered in support of the case
	EntitySelected  EntityType = "Selected"  // Factual narrative of the case
	EntityCerere    EntityType = "Cerere"    // What is being asked of the court
	EntityReclamant EntityType = "Reclamant" // Claimant
	EntityParat     EntityType = "Parat"     // Defendant
)

// AllEntityTypes lists every entity type in canonical order
var AllEntityTypes = []EntityType{
	EntityTemei,
	EntityProba,
	EntitySelected,
	EntityCerere,
	EntityReclamant,
	EntityParat,
}

// FlagName returns the Word flag name backing this entity type (e.g. "isTemei")
func (e EntityType) FlagName() string {
	return "is" + string(e)
}

// Valid reports whether e is a member of the closed enumeration
func (e EntityType) Valid() bool {
	for _, known := range AllEntityTypes {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEntityType accepts either the entity name ("Temei") or the flag name
// ("isTemei"), case-insensitively.
func ParseEntityType(name string) (EntityType, error) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	lower = strings.TrimPrefix(lower, "is")

	for _, known := range AllEntityTypes {
		if strings.ToLower(string(known)) == lower {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, name)
}

// ParseEntityTypes parses a list of names. An empty list means all entity types.
// Duplicates are dropped, first occurrence wins.
func ParseEntityTypes(names []string) ([]EntityType, error) {
	if len(names) == 0 {
		return append([]EntityType(nil), AllEntityTypes...), nil
	}

	seen := make(map[EntityType]bool)
	var types []EntityType
	for _, name := range names {
		e, err := ParseEntityType(name)
		if err != nil {
			return nil, err
		}
		if !seen[e] {
			seen[e] = true
			types = append(types, e)
		}
	}
	return types, nil
}
