package i18n

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadCatalogYAML parses a flat template-to-translation mapping:
//
//	"Missing data for required field.": "Donnée requise manquante."
//	"Field may not be null.": "Le champ ne peut pas être nul."
func LoadCatalogYAML(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("i18n: parse catalog: %w", err)
	}
	if c == nil {
		c = Catalog{}
	}
	return c, nil
}
