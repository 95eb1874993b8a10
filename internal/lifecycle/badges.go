package lifecycle

import (
	"strconv"
	"strings"

	"github.com/yoockh/mentorloop/internal/models"
)

// BadgeRule awards Title once a mentee's completed-session count reaches Threshold.
type BadgeRule struct {
	Threshold int
	Title     string
}

// DefaultBadgeRules is ordered by threshold; a rule's position (1-based) is
// the badge id.
var DefaultBadgeRules = []BadgeRule{
	{Threshold: 1, Title: "Starter"},
	{Threshold: 5, Title: "5 Sessions"},
	{Threshold: 10, Title: "10 Sessions"},
	{Threshold: 20, Title: "Consistency Master"},
}

// HasBadge matches by case-insensitive title. Ids drifted historically and
// cannot be trusted.
func HasBadge(earned []models.Badge, title string) bool {
	for _, b := range earned {
		if strings.EqualFold(strings.TrimSpace(b.Title), title) {
			return true
		}
	}
	return false
}

// DueBadges returns the badges a mentee with completed sessions qualifies for
// but does not hold yet.
func DueBadges(rules []BadgeRule, completed int, earned []models.Badge) []models.Badge {
	var out []models.Badge
	for i, r := range rules {
		if completed < r.Threshold || HasBadge(earned, r.Title) {
			continue
		}
		out = append(out, models.Badge{ID: strconv.Itoa(i + 1), Title: r.Title, Earned: true})
	}
	return out
}
