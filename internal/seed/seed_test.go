package seed

import (
	"testing"

	"github.com/h4ks-com/farmhand/internal/database"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const catalogYAML = `
job_types: [planting, weeding, " ", Planting]
rate_card:
  name: 2024 season
  effective_from: 2024-01-01
  activate: true
  rates:
    planting: 30000
    weeding: "22500.50"
`

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(catalogYAML))
	require.NoError(t, err)
	assert.Len(t, catalog.JobTypes, 4)
	require.NotNil(t, catalog.RateCard)
	assert.Equal(t, "30000", catalog.RateCard.Rates["planting"])
	assert.Equal(t, "22500.50", catalog.RateCard.Rates["weeding"])

	_, err = Parse([]byte("{}"))
	assert.ErrorIs(t, err, ErrEmptySeed)

	_, err = Parse([]byte("job_types: [unclosed"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	require.NoError(t, database.Migrate(db, log))

	catalogService := services.NewCatalogService(repository.NewCatalogRepository(db), db, log)

	catalog, err := Parse([]byte(catalogYAML))
	require.NoError(t, err)

	result, err := Apply(catalogService, 1, catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, result.JobTypesCreated)
	assert.Equal(t, 2, result.JobTypesSkipped)
	require.NotNil(t, result.RateCard)
	assert.True(t, result.RateCard.IsActive)
	assert.Equal(t, 2, result.Rates)

	rates, err := catalogService.Rates(1, result.RateCard.ID)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "planting", rates[0].JobType)
	assert.Equal(t, "30000", rates[0].RateAmount.String())
	assert.Equal(t, "22500.5", rates[1].RateAmount.String())
	assert.False(t, rates[1].Defaulted)

	again, err := Apply(catalogService, 1, &Catalog{JobTypes: []string{"weeding", "harvest"}})
	require.NoError(t, err)
	assert.Equal(t, 1, again.JobTypesCreated)
	assert.Nil(t, again.RateCard)
}

func TestApply_BadRate(t *testing.T) {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	require.NoError(t, database.Migrate(db, log))
	catalogService := services.NewCatalogService(repository.NewCatalogRepository(db), db, log)

	_, err = Apply(catalogService, 1, &Catalog{RateCard: &RateCardSeed{
		Name:  "broken",
		Rates: map[string]string{"planting": "lots"},
	}})
	assert.Error(t, err)

	_, err = Apply(catalogService, 1, &Catalog{RateCard: &RateCardSeed{
		Name:  "too cheap",
		Rates: map[string]string{"planting": "500"},
	}})
	assert.ErrorIs(t, err, services.ErrValidation)
}
