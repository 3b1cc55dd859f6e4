// Package scoring computes the match score between one quote request and
// one supplier catalog. It is pure: no clock reads, no I/O — callers pass
// the reference time so rankings are reproducible.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"winefeed/internal/models"
)

// Component kinds. Each sub-score stays independently interpretable so a
// routing decision can be audited from its reason tags alone.
const (
	KindRegionMatch   = "region_match"
	KindRegionNeutral = "region_neutral"
	KindBudgetMatch   = "budget_match"
	KindLeadTime      = "lead_time_match"
	KindMinOrderQty   = "moq_match"
	KindCatalogSize   = "catalog_size"
	KindNoCatalog     = "no_catalog"
)

// Sub-score caps.
const (
	maxRegionPoints   = 30
	neutralRegionPts  = 15
	maxBudgetPoints   = 25
	maxLeadTimePoints = 20
	maxMOQPoints      = 15
	maxCatalogPoints  = 10
)

// budgetTolerance is the accepted deviation from the requested per-bottle
// budget, i.e. wines priced within ±20% count as a budget match.
const budgetTolerance = 0.20

// Request is the subset of a quote request the scorer reads.
type Request struct {
	Freetext           string
	BudgetPerBottleOre *int64
	Quantity           *int
	DeliveryBy         *time.Time
}

// Component is one scored factor with its awarded points.
type Component struct {
	Kind   string `json:"kind"`
	Points int    `json:"points"`
}

// String renders the human-readable reason tag used in logs and listings,
// e.g. "region_match:12pts".
func (c Component) String() string {
	return fmt.Sprintf("%s:%dpts", c.Kind, c.Points)
}

// Result is the total score with its breakdown.
type Result struct {
	Score      int
	Components []Component
}

// Reasons returns the components as ordered reason tags.
func (r Result) Reasons() []string {
	reasons := make([]string, len(r.Components))
	for i, c := range r.Components {
		reasons[i] = c.String()
	}
	return reasons
}

// Score rates how well a supplier's active catalog fits a request, 0-100.
// A supplier with no active catalog scores exactly 0 with reason no_catalog
// and must be excluded by the caller regardless of other factors.
func Score(req Request, leadTimeDays int, catalog []models.Wine, now time.Time) Result {
	if len(catalog) == 0 {
		return Result{Score: 0, Components: []Component{{Kind: KindNoCatalog, Points: 0}}}
	}

	var components []Component

	components = append(components, regionScore(req.Freetext, catalog))

	if req.BudgetPerBottleOre != nil {
		components = append(components, budgetScore(*req.BudgetPerBottleOre, catalog))
	}

	if req.DeliveryBy != nil {
		components = append(components, leadTimeScore(*req.DeliveryBy, leadTimeDays, now))
	}

	if req.Quantity != nil {
		components = append(components, moqScore(*req.Quantity, catalog))
	}

	components = append(components, catalogSizeBonus(len(catalog)))

	total := 0
	for _, c := range components {
		total += c.Points
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return Result{Score: total, Components: components}
}

// ExtractKeywords pulls region, country and grape/style tokens out of the
// request freetext by case-insensitive substring match.
func ExtractKeywords(freetext string) []string {
	text := strings.ToLower(freetext)
	var keywords []string
	for _, vocab := range [][]string{regionTokens, countryTokens, grapeStyleTokens} {
		for _, token := range vocab {
			if strings.Contains(text, token) {
				keywords = append(keywords, token)
			}
		}
	}
	return keywords
}

// regionScore awards 0-30 points for keyword overlap between the request
// freetext and the catalog. Requests without detectable wine vocabulary get
// a neutral 15 so they are not penalized for phrasing.
func regionScore(freetext string, catalog []models.Wine) Component {
	keywords := ExtractKeywords(freetext)
	if len(keywords) == 0 {
		return Component{Kind: KindRegionNeutral, Points: neutralRegionPts}
	}

	hits := 0
	for _, wine := range catalog {
		text := wineText(wine)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
	}

	raw := float64(hits) / float64(len(catalog)*len(keywords)) * 100 * 0.3
	return Component{Kind: KindRegionMatch, Points: roundCapped(raw, maxRegionPoints)}
}

// budgetScore awards 0-25 points for the share of the catalog priced
// within ±20% of the requested per-bottle budget.
func budgetScore(budgetOre int64, catalog []models.Wine) Component {
	lo := float64(budgetOre) * (1 - budgetTolerance)
	hi := float64(budgetOre) * (1 + budgetTolerance)

	matching := 0
	for _, wine := range catalog {
		p := float64(wine.PriceExVatOre)
		if p >= lo && p <= hi {
			matching++
		}
	}

	raw := float64(matching) / float64(len(catalog)) * 100 * 0.25
	return Component{Kind: KindBudgetMatch, Points: roundCapped(raw, maxBudgetPoints)}
}

// leadTimeScore awards 0-20 points for the supplier's ability to meet the
// delivery deadline: 0 when the lead time cannot meet it, full points when
// there is at least twice the lead time available, linear in between.
func leadTimeScore(deliveryBy time.Time, leadTimeDays int, now time.Time) Component {
	days := deliveryBy.Sub(now).Hours() / 24

	if leadTimeDays <= 0 {
		return Component{Kind: KindLeadTime, Points: maxLeadTimePoints}
	}

	lead := float64(leadTimeDays)
	switch {
	case days < lead:
		return Component{Kind: KindLeadTime, Points: 0}
	case days >= 2*lead:
		return Component{Kind: KindLeadTime, Points: maxLeadTimePoints}
	default:
		raw := 10 + (days-lead)/lead*10
		return Component{Kind: KindLeadTime, Points: roundCapped(raw, maxLeadTimePoints)}
	}
}

// moqScore awards 0-15 points for the share of the catalog whose minimum
// order quantity fits the requested bottle count.
func moqScore(quantity int, catalog []models.Wine) Component {
	matching := 0
	for _, wine := range catalog {
		if wine.MinOrderQty <= quantity {
			matching++
		}
	}

	raw := float64(matching) / float64(len(catalog)) * 100 * 0.15
	return Component{Kind: KindMinOrderQty, Points: roundCapped(raw, maxMOQPoints)}
}

// catalogSizeBonus awards up to 10 points, one per ten active wines.
func catalogSizeBonus(size int) Component {
	raw := float64(size) / 10
	return Component{Kind: KindCatalogSize, Points: roundCapped(raw, maxCatalogPoints)}
}

func wineText(w models.Wine) string {
	return strings.ToLower(strings.Join([]string{w.Name, w.Country, w.Region, w.Grape}, " "))
}

func roundCapped(raw float64, limit int) int {
	if raw > float64(limit) {
		return limit
	}
	if raw < 0 {
		return 0
	}
	return int(math.Round(raw))
}
