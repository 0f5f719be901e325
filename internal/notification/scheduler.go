package notification

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"kindred/internal/member/models"
)

// LookaheadDays is the rolling window, inclusive of today, within which
// upcoming events produce notifications.
const LookaheadDays = 30

// dateLayout matches the date-only strings stored on member records.
const dateLayout = "2006-01-02"

// Compute derives the notification list for a population. Pure: no clock
// access beyond the supplied today, no randomness. Output is sorted
// ascending by date with deterministic ids.
func Compute(members []*models.Member, custom []CustomMessage, today time.Time) []Notification {
	today = dateOnly(today)
	var out []Notification
	seq := make(map[string]int)

	for _, m := range members {
		if m.GreetingsEnabled() {
			out = appendAnnual(out, seq, m, TypeBirthday, m.DOB, today)
			out = appendAnnual(out, seq, m, TypeAnniversary, m.Anniversary, today)
			for _, occ := range m.OtherSpecialOccasions {
				out = appendOccasion(out, seq, m, occ, today)
			}
		}
		// Renewals are never opted out of.
		out = appendRenewals(out, seq, m, today)
	}

	for _, msg := range custom {
		scheduled, err := time.Parse(dateLayout, msg.Date)
		if err != nil {
			continue
		}
		if !dateOnly(scheduled).Equal(today) {
			continue
		}
		out = append(out, Notification{
			ID:      nextID(seq, TypeCustom, msg.ID),
			Type:    TypeCustom,
			Date:    today,
			Message: msg.Message,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func appendAnnual(out []Notification, seq map[string]int, m *models.Member, typ Type, raw string, today time.Time) []Notification {
	occurrence, ok := nextOccurrence(raw, today)
	if !ok {
		return out
	}
	days := daysBetween(today, occurrence)
	if days > LookaheadDays {
		return out
	}
	var label string
	switch typ {
	case TypeBirthday:
		label = fmt.Sprintf("%s's birthday", m.Name)
	case TypeAnniversary:
		label = fmt.Sprintf("%s's anniversary", m.Name)
	}
	return append(out, Notification{
		ID:             nextID(seq, typ, string(m.ID)),
		Type:           typ,
		Date:           occurrence,
		Message:        eventMessage(label, days),
		MemberRecordID: m.ID,
		MemberID:       m.MemberID,
		MemberName:     m.Name,
		MemberMobile:   m.Mobile,
	})
}

func appendOccasion(out []Notification, seq map[string]int, m *models.Member, occ models.SpecialOccasion, today time.Time) []Notification {
	occurrence, ok := nextOccurrence(occ.Date, today)
	if !ok {
		return out
	}
	days := daysBetween(today, occurrence)
	if days > LookaheadDays {
		return out
	}
	label := fmt.Sprintf("%s's %s", m.Name, strings.TrimSpace(occ.Name))
	return append(out, Notification{
		ID:             nextID(seq, TypeSpecialOccasion, string(m.ID)),
		Type:           TypeSpecialOccasion,
		Date:           occurrence,
		Message:        eventMessage(label, days),
		MemberRecordID: m.ID,
		MemberID:       m.MemberID,
		MemberName:     m.Name,
		MemberMobile:   m.Mobile,
	})
}

func appendRenewals(out []Notification, seq map[string]int, m *models.Member, today time.Time) []Notification {
	for i := range m.Policies {
		pol := &m.Policies[i]
		if pol.Status != models.PolicyStatusActive {
			continue
		}
		renewal, err := time.Parse(dateLayout, pol.RenewalDate)
		if err != nil {
			continue
		}
		days := daysBetween(today, dateOnly(renewal))
		if days < 0 || days > LookaheadDays {
			continue
		}
		label := fmt.Sprintf("%s's %s policy renewal", m.Name, pol.PolicyType)
		out = append(out, Notification{
			ID:             nextID(seq, TypePolicyRenewal, string(m.ID)),
			Type:           TypePolicyRenewal,
			Date:           dateOnly(renewal),
			Message:        eventMessage(label, days),
			MemberRecordID: m.ID,
			MemberID:       m.MemberID,
			MemberName:     m.Name,
			MemberMobile:   m.Mobile,
			Policy:         pol.Clone(),
		})
	}
	return out
}

// nextOccurrence applies the event's month/day to the current year, rolling
// forward a year when the date has already passed (date-only comparison).
func nextOccurrence(raw string, today time.Time) (time.Time, bool) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	occurrence := time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if occurrence.Before(today) {
		occurrence = time.Date(today.Year()+1, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	}
	return occurrence, true
}

// eventMessage branches on "today" versus "in N days", pluralizing by N.
func eventMessage(label string, days int) string {
	if days == 0 {
		return fmt.Sprintf("%s is today", label)
	}
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s is in %d %s", label, days, unit)
}

func nextID(seq map[string]int, typ Type, sourceID string) string {
	key := typ.idPrefix() + "-" + sourceID
	seq[key]++
	return fmt.Sprintf("%s-%d", key, seq[key])
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
