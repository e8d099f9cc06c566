package app

import (
	"sort"

	"eco-quiz-engine/internal/domain"
)

// RankStep is the total score needed per player rank.
const RankStep = 1000

// ApplyResult folds a finished play-through into a player's standing:
// scores accumulate, badges union, and the best result (percentage, then
// score) is kept.
func ApplyResult(prev domain.Standing, res domain.Result) domain.Standing {
	next := prev
	next.PlayerID = res.PlayerID
	if res.DisplayName != "" {
		next.DisplayName = res.DisplayName
	}
	next.TotalScore += res.Summary.Score
	next.PlayThroughs++
	next.Rank = next.TotalScore/RankStep + 1
	next.UpdatedAt = res.FinishedAt

	if prev.PlayThroughs == 0 ||
		res.Summary.OverallPercentage > prev.BestPercentage ||
		(res.Summary.OverallPercentage == prev.BestPercentage && res.Summary.Score > prev.BestScore) {
		next.BestPercentage = res.Summary.OverallPercentage
		next.BestScore = res.Summary.Score
	}

	seen := make(map[domain.Badge]struct{}, len(prev.Badges)+len(res.Summary.Badges))
	badges := make([]domain.Badge, 0, len(prev.Badges)+len(res.Summary.Badges))
	for _, list := range [][]domain.Badge{prev.Badges, res.Summary.Badges} {
		for _, b := range list {
			if _, ok := seen[b]; ok {
				continue
			}
			seen[b] = struct{}{}
			badges = append(badges, b)
		}
	}
	next.Badges = badges
	return next
}

// SortStandings orders by total score desc, then who reached it earlier,
// then display name.
func SortStandings(entries []domain.Standing) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.Before(entries[j].UpdatedAt)
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
}
