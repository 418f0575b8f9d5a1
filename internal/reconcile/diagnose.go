package reconcile

import (
	"context"

	"github.com/antzucaro/matchr"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/pkg/models"
)

// MissReason explains why a row matched no entity
type MissReason int

const (
	// MissUndiagnosed means the store could not list teams
	MissUndiagnosed MissReason = iota
	// MissNotOnRoster means the team is known but has no player by that name
	MissNotOnRoster
	// MissUnknownTeam means no entity in the league carries the team label,
	// which usually points at a missing alias
	MissUnknownTeam
)

func (m MissReason) String() string {
	switch m {
	case MissNotOnRoster:
		return "not_on_roster"
	case MissUnknownTeam:
		return "unknown_team"
	default:
		return "undiagnosed"
	}
}

// suggestionThreshold is the minimum Jaro-Winkler similarity for a team
// suggestion
const suggestionThreshold = 0.85

func (r *Reconciler) diagnose(ctx context.Context, key models.Key) (MissReason, string) {
	lister, ok := r.store.(TeamLister)
	if !ok {
		return MissUndiagnosed, ""
	}

	teams, err := lister.Teams(ctx, key.League)
	if err != nil {
		log.Debug().Err(err).Str("league", string(key.League)).Msg("Team listing failed, miss left undiagnosed")
		return MissUndiagnosed, ""
	}

	for _, team := range teams {
		if team == key.Team {
			return MissNotOnRoster, ""
		}
	}
	return MissUnknownTeam, closest(key.Team, teams)
}

func closest(label string, candidates []string) string {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := matchr.JaroWinkler(label, c, false)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}
