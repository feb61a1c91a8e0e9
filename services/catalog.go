package services

import (
	"fmt"
	"os"

	"monadmons-arena/models"

	"gopkg.in/yaml.v3"
)

// CatalogService serves the static card catalog.
type CatalogService struct {
	cards []models.CardDefinition
	byID  map[string]models.CardDefinition
}

func NewCatalogService(cards []models.CardDefinition) *CatalogService {
	s := &CatalogService{byID: make(map[string]models.CardDefinition, len(cards))}
	for _, c := range cards {
		s.cards = append(s.cards, c)
		s.byID[c.ID] = c
	}
	return s
}

type catalogFile struct {
	Cards []models.CardDefinition `yaml:"cards"`
}

// LoadCatalogFile reads a YAML catalog; an empty path yields the built-in catalog.
func LoadCatalogFile(path string) (*CatalogService, error) {
	if path == "" {
		return NewCatalogService(models.DefaultCatalog), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, c := range f.Cards {
		if c.ID == "" || c.MaxHP <= 0 || len(c.Moves) == 0 {
			return nil, fmt.Errorf("catalog entry %d (%q) needs id, max_hp and moves", i, c.Name)
		}
	}
	return NewCatalogService(f.Cards), nil
}

func (s *CatalogService) All() []models.CardDefinition {
	return append([]models.CardDefinition(nil), s.cards...)
}

func (s *CatalogService) Get(id string) (models.CardDefinition, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *CatalogService) DailyClaimable() []models.CardDefinition {
	var out []models.CardDefinition
	for _, c := range s.cards {
		if c.DailyClaimable {
			out = append(out, c)
		}
	}
	return out
}

func (s *CatalogService) ByTier(tier models.CardTier) []models.CardDefinition {
	var out []models.CardDefinition
	for _, c := range s.cards {
		if c.Tier == tier {
			out = append(out, c)
		}
	}
	return out
}
