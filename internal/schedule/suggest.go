package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Scoring weights. These are hand-tuned and calibrated against the warning
// and rationale text below; do not rebalance without updating both.
const (
	baseScore          = 100
	skillMismatchDrop  = 50
	occupiedSlotDrop   = 100
	loadedTeacherDrop  = 10
	declaredSlotBoost  = 20
	undeclaredSlotDrop = 100
)

// Suggestion is one candidate (teacher, level, slot) placement with its
// feasibility score and the human-readable reasoning behind it.
type Suggestion struct {
	TeacherID string   `json:"teacher_id"`
	Level     string   `json:"level"`
	Slot      Slot     `json:"slot"`
	Score     int      `json:"score"`
	Rationale []string `json:"rationale"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Suggest enumerates feasible new-batch placements across the roster for the
// given date and ranks them by score descending, teacher id ascending.
// Teachers at full capacity never appear; neither do candidates whose score
// clamps to zero. Identical input yields identical ordered output.
func Suggest(teachers []TeacherProfile, entities []Entity, date time.Time, levels []string) []Suggestion {
	roster := make([]TeacherProfile, len(teachers))
	copy(roster, teachers)
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	var suggestions []Suggestion
	for _, teacher := range roster {
		availability := ComputeAvailability(teacher, entities, date)
		if availability.Capacity == CapacityFull {
			continue
		}

		active := activeFor(teacher.ID, entities, date)
		occupied := occupiedSlots(active)
		load := availability.CurrentLoad

		for _, slot := range slotOrder {
			if _, taken := occupied[slot]; taken {
				continue
			}
			for _, level := range levels {
				if s, ok := scoreCandidate(teacher, slot, level, load, occupied); ok {
					suggestions = append(suggestions, s)
				}
			}
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].TeacherID < suggestions[j].TeacherID
	})
	return suggestions
}

func scoreCandidate(teacher TeacherProfile, slot Slot, level string, load int, occupied map[Slot]string) (Suggestion, bool) {
	score := baseScore
	var warnings []string
	rationale := []string{fmt.Sprintf("%s is free in the %s slot", teacher.Name, strings.ToLower(string(slot)))}

	skillMatch := teacher.teaches(level)
	if !skillMatch {
		score -= skillMismatchDrop
		warnings = append(warnings, fmt.Sprintf("capability not confirmed for %s", level))
	}

	// Occupied slots are filtered out before scoring; keep the deduction in
	// case a caller scores a slot directly.
	if _, taken := occupied[slot]; taken {
		score -= occupiedSlotDrop
	}

	switch load {
	case 0:
		rationale = append(rationale, "not teaching any batches")
	case 1:
		score -= loadedTeacherDrop
		rationale = append(rationale, "has 1 slot free")
		warnings = append(warnings, "already has 1 batch")
	}

	if teacher.declares(slot) {
		score += declaredSlotBoost
	} else {
		score -= undeclaredSlotDrop
	}

	if skillMatch {
		rationale = append(rationale, fmt.Sprintf("confirmed for %s", level))
	} else {
		rationale = append(rationale, fmt.Sprintf("no confirmed capability for %s", level))
	}

	if score > 100 {
		score = 100
	}
	if score <= 0 {
		return Suggestion{}, false
	}

	return Suggestion{
		TeacherID: teacher.ID,
		Level:     level,
		Slot:      slot,
		Score:     score,
		Rationale: rationale,
		Warnings:  warnings,
	}, true
}
