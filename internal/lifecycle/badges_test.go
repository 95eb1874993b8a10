package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yoockh/mentorloop/internal/models"
)

func titles(bs []models.Badge) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Title)
	}
	return out
}

func TestDueBadges_Thresholds(t *testing.T) {
	assert.Empty(t, DueBadges(DefaultBadgeRules, 0, nil))
	assert.Equal(t, []string{"Starter"}, titles(DueBadges(DefaultBadgeRules, 1, nil)))
	assert.Equal(t, []string{"Starter", "5 Sessions", "10 Sessions"}, titles(DueBadges(DefaultBadgeRules, 12, nil)))
}

func TestDueBadges_CaseInsensitiveTitleMatch(t *testing.T) {
	earned := []models.Badge{
		{ID: "7", Title: "starter", Earned: true}, // drifted id, lowercase title
		{ID: "2", Title: "5 SESSIONS", Earned: true},
	}

	due := DueBadges(DefaultBadgeRules, 5, earned)

	assert.Empty(t, due)
}

func TestDueBadges_IdsFollowRuleOrder(t *testing.T) {
	due := DueBadges(DefaultBadgeRules, 20, nil)

	assert.Equal(t, []models.Badge{
		{ID: "1", Title: "Starter", Earned: true},
		{ID: "2", Title: "5 Sessions", Earned: true},
		{ID: "3", Title: "10 Sessions", Earned: true},
		{ID: "4", Title: "Consistency Master", Earned: true},
	}, due)
}

// Walking the count from 1 to 25 and keeping what was awarded grants each
// badge exactly once, at its threshold.
func TestDueBadges_Monotonic(t *testing.T) {
	var earned []models.Badge
	awardedAt := map[string]int{}

	for n := 1; n <= 25; n++ {
		for _, b := range DueBadges(DefaultBadgeRules, n, earned) {
			_, dup := awardedAt[b.Title]
			assert.False(t, dup, "badge %q awarded twice", b.Title)
			awardedAt[b.Title] = n
			earned = append(earned, b)
		}
	}

	assert.Equal(t, map[string]int{
		"Starter":            1,
		"5 Sessions":         5,
		"10 Sessions":        10,
		"Consistency Master": 20,
	}, awardedAt)
	assert.Len(t, earned, 4)
}

func TestHasBadge(t *testing.T) {
	earned := []models.Badge{{Title: " Consistency master "}}
	assert.True(t, HasBadge(earned, "Consistency Master"))
	assert.False(t, HasBadge(earned, "Starter"))
}
