// Package seed loads a farm's job-type catalog and rate card from YAML.
package seed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Catalog is the seed file layout:
//
//	job_types: [planting, weeding, harvest]
//	rate_card:
//	  name: 2024 season
//	  currency: NGN
//	  effective_from: 2024-01-01
//	  activate: true
//	  rates:
//	    planting: 30000
//	    weeding: "22500.50"
type Catalog struct {
	JobTypes []string      `yaml:"job_types"`
	RateCard *RateCardSeed `yaml:"rate_card"`
}

type RateCardSeed struct {
	Name          string            `yaml:"name"`
	Currency      string            `yaml:"currency"`
	EffectiveFrom string            `yaml:"effective_from"`
	Activate      bool              `yaml:"activate"`
	Rates         map[string]string `yaml:"rates"`
}

type Result struct {
	JobTypesCreated int
	JobTypesSkipped int
	RateCard        *models.RateCard
	Rates           int
}

var ErrEmptySeed = errors.New("seed file has no job_types and no rate_card")

func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("invalid seed yaml: %w", err)
	}
	if len(catalog.JobTypes) == 0 && catalog.RateCard == nil {
		return nil, ErrEmptySeed
	}
	return &catalog, nil
}

func (r *RateCardSeed) amounts() (map[string]decimal.Decimal, error) {
	amounts := make(map[string]decimal.Decimal, len(r.Rates))
	for jobType, raw := range r.Rates {
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("rate for %q: %w", jobType, err)
		}
		amounts[jobType] = amount
	}
	return amounts, nil
}

// Apply creates missing job types, then the rate card with its rates. Existing job types are kept.
func Apply(catalogService *services.CatalogService, farmID uint, catalog *Catalog) (*Result, error) {
	existing, err := catalogService.ListJobTypes(farmID, false)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, jt := range existing {
		known[strings.ToLower(jt.Name)] = true
	}

	result := &Result{}
	for _, name := range catalog.JobTypes {
		name = strings.TrimSpace(name)
		if name == "" || known[strings.ToLower(name)] {
			result.JobTypesSkipped++
			continue
		}
		if _, err := catalogService.CreateJobType(farmID, name); err != nil {
			return result, err
		}
		known[strings.ToLower(name)] = true
		result.JobTypesCreated++
	}

	if catalog.RateCard == nil {
		return result, nil
	}

	seed := catalog.RateCard
	amounts, err := seed.amounts()
	if err != nil {
		return result, err
	}
	var effective *time.Time
	if seed.EffectiveFrom != "" {
		t, err := services.ParseDay(seed.EffectiveFrom)
		if err != nil {
			return result, err
		}
		effective = &t
	}

	card, err := catalogService.CreateRateCard(farmID, services.RateCardInput{
		Name:          seed.Name,
		Currency:      seed.Currency,
		EffectiveFrom: effective,
		Activate:      seed.Activate,
	})
	if err != nil {
		return result, err
	}
	result.RateCard = card

	if len(amounts) > 0 {
		rates, err := catalogService.SaveRates(farmID, card.ID, amounts)
		if err != nil {
			return result, err
		}
		result.Rates = len(rates)
	}
	return result, nil
}
