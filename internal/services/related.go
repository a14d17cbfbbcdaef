package services

import (
	"sort"
	"strings"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

// Relatedness weights. Location dominates, then the investment property
// type, then purpose, then price and size proximity bands.
const (
	scoreSameLocation       = 100
	scoreSameInvestmentType = 50
	scoreSamePurpose        = 30
	scorePriceBand          = 25
	scoreSizeBand           = 10

	priceBandTolerance = 0.30
	sizeBandTolerance  = 0.20
)

// relatedScore computes the similarity score of candidate against source.
// A zero score means "not related at all"; callers drop those.
func relatedScore(source, candidate *models.Property) int {
	score := 0

	if source.Location != "" && strings.EqualFold(strings.TrimSpace(source.Location), strings.TrimSpace(candidate.Location)) {
		score += scoreSameLocation
	}

	// The investment property type only signals similarity when both sides
	// actually carry investment details.
	if source.InvestmentDetails != nil && candidate.InvestmentDetails != nil &&
		source.InvestmentDetails.PropertyType != "" &&
		strings.EqualFold(source.InvestmentDetails.PropertyType, candidate.InvestmentDetails.PropertyType) {
		score += scoreSameInvestmentType
	}

	if source.PropertyPurpose != "" && source.PropertyPurpose == candidate.PropertyPurpose {
		score += scoreSamePurpose
	}

	if utils.RelativeDiff(propertyPrice(source), propertyPrice(candidate)) <= priceBandTolerance {
		score += scorePriceBand
	}

	if utils.RelativeDiff(utils.NumericValue(source.Size), utils.NumericValue(candidate.Size)) <= sizeBandTolerance {
		score += scoreSizeBand
	}

	return score
}

// rankRelated scores candidates, drops the unrelated, and returns the top
// entries in descending score order. Ties keep the input order.
func rankRelated(source *models.Property, candidates []models.Property, limit int) []models.Property {
	type scored struct {
		property models.Property
		score    int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if sc := relatedScore(source, &c); sc > 0 {
			ranked = append(ranked, scored{property: c, score: sc})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]models.Property, len(ranked))
	for i, r := range ranked {
		out[i] = r.property
	}
	return out
}
