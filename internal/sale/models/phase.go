package models

import "time"

type Phase string

const (
	PhasePresale Phase = "presale"
	PhasePublic  Phase = "public"
)

// PhaseAt derives the sale phase from the current time. It is recomputed on
// every call because publicPhaseStart can change at any moment.
func PhaseAt(now, publicPhaseStart time.Time) Phase {
	if now.Before(publicPhaseStart) {
		return PhasePresale
	}
	return PhasePublic
}
