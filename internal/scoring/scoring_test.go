package scoring

import (
	"testing"
	"time"

	"winefeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreNow = time.Date(2025, 4, 7, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int              { return &v }
func orePtr(v int64) *int64          { return &v }
func datePtr(t time.Time) *time.Time { return &t }

func wine(name, country, region, grape string, priceOre int64, moq int) models.Wine {
	return models.Wine{
		Name:          name,
		Country:       country,
		Region:        region,
		Grape:         grape,
		PriceExVatOre: priceOre,
		MinOrderQty:   moq,
		Active:        true,
	}
}

func TestScoreEmptyCatalog(t *testing.T) {
	req := Request{Freetext: "Söker rött vin från Bordeaux"}

	result := Score(req, 3, nil, scoreNow)

	assert.Equal(t, 0, result.Score)
	require.Len(t, result.Components, 1)
	assert.Equal(t, KindNoCatalog, result.Components[0].Kind)
	assert.Equal(t, []string{"no_catalog:0pts"}, result.Reasons())
}

func TestScoreBordeauxRequest(t *testing.T) {
	req := Request{
		Freetext:           "Söker elegant rött vin från Bordeaux, Frankrike till vårmenyn",
		BudgetPerBottleOre: orePtr(45000),
		Quantity:           intPtr(12),
		DeliveryBy:         datePtr(scoreNow.AddDate(0, 0, 10)),
	}

	french := []models.Wine{wine("Château Fontaine", "Frankrike", "Bordeaux", "Merlot", 43000, 6)}
	italian := []models.Wine{wine("Barolo Riserva", "Italien", "Piemonte", "Nebbiolo", 89000, 12)}

	// Keywords: bordeaux, frankrike, rött, rött vin. The French wine hits
	// two of four, the Italian none.
	frResult := Score(req, 3, french, scoreNow)
	itResult := Score(req, 7, italian, scoreNow)

	// region 15 + budget 25 + lead 20 + moq 15 + catalog 0
	assert.Equal(t, 75, frResult.Score)
	// region 0 + budget 0 + lead 14 + moq 15 + catalog 0
	assert.Equal(t, 29, itResult.Score)

	assert.Contains(t, frResult.Reasons(), "region_match:15pts")
	assert.Contains(t, frResult.Reasons(), "budget_match:25pts")
	assert.Contains(t, frResult.Reasons(), "lead_time_match:20pts")
	assert.Contains(t, frResult.Reasons(), "moq_match:15pts")
	assert.Contains(t, itResult.Reasons(), "region_match:0pts")
	assert.Contains(t, itResult.Reasons(), "lead_time_match:14pts")
}

func TestScoreNeutralWhenNoWineVocabulary(t *testing.T) {
	req := Request{Freetext: "Behöver dryck till invigningen nästa månad"}
	catalog := []models.Wine{wine("House Red", "Chile", "Maipo", "Cabernet", 12000, 6)}

	result := Score(req, 5, catalog, scoreNow)

	assert.Contains(t, result.Reasons(), "region_neutral:15pts")
}

func TestScoreOptionalFactorsSkipped(t *testing.T) {
	// No budget, quantity or deadline: only the region component and the
	// catalog bonus contribute.
	req := Request{Freetext: "rioja"}
	catalog := []models.Wine{wine("Gran Reserva", "Spanien", "Rioja", "Tempranillo", 25000, 6)}

	result := Score(req, 5, catalog, scoreNow)

	require.Len(t, result.Components, 2)
	assert.Equal(t, KindRegionMatch, result.Components[0].Kind)
	assert.Equal(t, KindCatalogSize, result.Components[1].Kind)
}

func TestScoreStaysWithinBounds(t *testing.T) {
	// A catalog that hits every factor at its cap must still not exceed 100.
	req := Request{
		Freetext:           "rött vin från bordeaux frankrike cabernet",
		BudgetPerBottleOre: orePtr(20000),
		Quantity:           intPtr(24),
		DeliveryBy:         datePtr(scoreNow.AddDate(0, 0, 30)),
	}

	var catalog []models.Wine
	for i := 0; i < 120; i++ {
		catalog = append(catalog, wine("Rött Vin Bordeaux Cabernet", "Frankrike", "Bordeaux", "Cabernet", 20000, 6))
	}

	result := Score(req, 3, catalog, scoreNow)

	assert.LessOrEqual(t, result.Score, 100)
	assert.GreaterOrEqual(t, result.Score, 0)
	for _, c := range result.Components {
		assert.GreaterOrEqual(t, c.Points, 0, c.Kind)
	}
}

func TestBudgetScore(t *testing.T) {
	tests := []struct {
		name      string
		budgetOre int64
		prices    []int64
		want      int
	}{
		{"all within tolerance", 45000, []int64{43000, 45000, 54000}, 25},
		{"half within tolerance", 40000, []int64{40000, 90000}, 13},
		{"boundary is inclusive", 40000, []int64{32000, 48000}, 25},
		{"none within tolerance", 40000, []int64{10000, 90000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var catalog []models.Wine
			for _, p := range tt.prices {
				catalog = append(catalog, wine("w", "", "", "", p, 6))
			}
			c := budgetScore(tt.budgetOre, catalog)
			assert.Equal(t, KindBudgetMatch, c.Kind)
			assert.Equal(t, tt.want, c.Points)
		})
	}
}

func TestLeadTimeScore(t *testing.T) {
	tests := []struct {
		name         string
		daysUntil    int
		leadTimeDays int
		want         int
	}{
		{"deadline inside lead time", 2, 3, 0},
		{"exactly lead time", 7, 7, 10},
		{"halfway to double", 9, 6, 15},
		{"exactly double lead time", 14, 7, 20},
		{"well beyond double", 30, 3, 20},
		{"no lead time configured", 1, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliveryBy := scoreNow.AddDate(0, 0, tt.daysUntil)
			c := leadTimeScore(deliveryBy, tt.leadTimeDays, scoreNow)
			assert.Equal(t, KindLeadTime, c.Kind)
			assert.Equal(t, tt.want, c.Points)
		})
	}
}

func TestMOQScore(t *testing.T) {
	catalog := []models.Wine{
		wine("a", "", "", "", 10000, 6),
		wine("b", "", "", "", 10000, 12),
		wine("c", "", "", "", 10000, 48),
	}

	// Two of three wines sellable at 12 bottles.
	c := moqScore(12, catalog)
	assert.Equal(t, 10, c.Points)

	assert.Equal(t, 15, moqScore(48, catalog).Points)
	assert.Equal(t, 0, moqScore(3, catalog).Points)
}

func TestCatalogSizeBonus(t *testing.T) {
	assert.Equal(t, 0, catalogSizeBonus(1).Points)
	assert.Equal(t, 1, catalogSizeBonus(10).Points)
	assert.Equal(t, 5, catalogSizeBonus(50).Points)
	assert.Equal(t, 10, catalogSizeBonus(100).Points)
	assert.Equal(t, 10, catalogSizeBonus(250).Points)
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("Vi vill ha ett rött vin från Bordeaux, gärna ekologiskt")

	assert.Contains(t, keywords, "bordeaux")
	assert.Contains(t, keywords, "rött")
	assert.Contains(t, keywords, "rött vin")
	assert.Contains(t, keywords, "ekologisk")

	assert.Empty(t, ExtractKeywords("Bokning till lördag kväll"))
}

func TestComponentString(t *testing.T) {
	c := Component{Kind: KindRegionMatch, Points: 12}
	assert.Equal(t, "region_match:12pts", c.String())
}
