package fitness

import "github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"

// Behaviour tags.
const (
	TagGrinder           = "grinder"
	TagReliable          = "reliable"
	TagSurfaceSpecialist = "surface_specialist"
)

// tagPredicate decides one tag from aggregate metrics. Predicates are
// independent: any subset may fire together.
type tagPredicate struct {
	name  string
	match func(*models.CompetitorProfile) bool
}

// TagIdentifier runs the fixed predicate set over a profile.
type TagIdentifier struct {
	predicates []tagPredicate
}

// NewTagIdentifier creates a tag identifier with the standard
// predicate set
func NewTagIdentifier() *TagIdentifier {
	return &TagIdentifier{
		predicates: []tagPredicate{
			{
				// Places constantly but almost never converts wins.
				name: TagGrinder,
				match: func(p *models.CompetitorProfile) bool {
					return p.WinPlaceRatio < 0.1 && p.PlacementRate > 0.5 && p.RatingStdDev < 8
				},
			},
			{
				name: TagReliable,
				match: func(p *models.CompetitorProfile) bool {
					return p.PlacementRate >= 0.5 && p.RatingStdDev < 6
				},
			},
			{
				// Markedly better at one venue than overall.
				name: TagSurfaceSpecialist,
				match: func(p *models.CompetitorProfile) bool {
					return p.BestVenueRate()-p.PlacementRate >= 0.15
				},
			},
		},
	}
}

// Identify returns every tag whose predicate fires, in declaration
// order.
func (t *TagIdentifier) Identify(profile *models.CompetitorProfile) []string {
	if profile == nil || profile.ValidRaces == 0 {
		return nil
	}
	var tags []string
	for _, p := range t.predicates {
		if p.match(profile) {
			tags = append(tags, p.name)
		}
	}
	return tags
}
