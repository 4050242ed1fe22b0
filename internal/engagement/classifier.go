// Package engagement classifies post reactions and derives engagement metrics.
package engagement

import (
	"sort"
	"strconv"
)

// ReactionKind is the closed set of reaction variants a post can carry.
type ReactionKind int

const (
	// KindUnknown covers absent or unrecognized reaction types.
	KindUnknown ReactionKind = iota
	// KindStandard is a regular emoji reaction.
	KindStandard
	// KindCustomEmoji is a custom (premium) emoji reaction.
	KindCustomEmoji
	// KindPaidStar is a paid star reaction.
	KindPaidStar
)

func (k ReactionKind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindCustomEmoji:
		return "custom_emoji"
	case KindPaidStar:
		return "paid_star"
	default:
		return "unknown"
	}
}

// Paid reports whether the kind is excluded from organic engagement.
func (k ReactionKind) Paid() bool {
	return k == KindCustomEmoji || k == KindPaidStar
}

// Reaction categories used in breakdown rows.
const (
	CategoryFree  = "free"
	CategoryPaid  = "paid"
	CategoryOther = "other"
)

// ReactionResult is one reaction row on a post.
type ReactionResult struct {
	Kind     ReactionKind `json:"kind"`
	Emoji    string       `json:"emoji,omitempty"`
	CustomID int64        `json:"custom_id,omitempty"`
	Count    int          `json:"count"`
}

// BreakdownRow is a single reaction in a classification breakdown.
type BreakdownRow struct {
	Label    string `json:"emoji"`
	Kind     string `json:"reaction_type"`
	Category string `json:"type"`
	Count    int    `json:"count"`
}

// Classification is the result of splitting reactions into free and paid totals.
type Classification struct {
	TotalFree int            `json:"total_free_reactions"`
	TotalPaid int            `json:"total_paid_reactions"`
	TotalAll  int            `json:"total_all_reactions"`
	Breakdown []BreakdownRow `json:"reactions_breakdown"`
}

// Classify partitions reaction counts into free and paid totals.
// Unknown kinds count as free. Negative counts are treated as zero.
func Classify(reactions []ReactionResult) Classification {
	out := Classification{Breakdown: make([]BreakdownRow, 0, len(reactions))}

	for _, r := range reactions {
		count := r.Count
		if count < 0 {
			count = 0
		}

		row := BreakdownRow{
			Label: label(r),
			Kind:  r.Kind.String(),
			Count: count,
		}
		switch {
		case r.Kind.Paid():
			row.Category = CategoryPaid
			out.TotalPaid += count
		case r.Kind == KindStandard:
			row.Category = CategoryFree
			out.TotalFree += count
		default:
			row.Category = CategoryOther
			out.TotalFree += count
		}
		out.Breakdown = append(out.Breakdown, row)
	}

	sort.SliceStable(out.Breakdown, func(i, j int) bool {
		return out.Breakdown[i].Count > out.Breakdown[j].Count
	})
	out.TotalAll = out.TotalFree + out.TotalPaid
	return out
}

func label(r ReactionResult) string {
	switch r.Kind {
	case KindStandard:
		if r.Emoji == "" {
			return "?"
		}
		return r.Emoji
	case KindCustomEmoji:
		return "[Custom Emoji: " + formatID(r.CustomID) + "]"
	case KindPaidStar:
		return "[Paid Star]"
	default:
		return "[Unknown]"
	}
}

func formatID(id int64) string {
	if id == 0 {
		return "unknown"
	}
	return strconv.FormatInt(id, 10)
}
