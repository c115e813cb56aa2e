package geocode

import (
	"strings"

	"github.com/lox/skyglass/internal/models"
)

// SelectionLabel names a chosen search result: the place name (or the first
// display-name segment) followed by the last display-name segment, which
// Nominatim fills with the country.
func SelectionLabel(p models.Place) string {
	parts := strings.Split(p.DisplayName, ",")
	name := p.Name
	if name == "" {
		name = parts[0]
	}
	return name + ", " + strings.TrimSpace(parts[len(parts)-1])
}
