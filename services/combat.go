package services

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"monadmons-arena/models"
)

// Roller returns a uniform draw in [0, 1). Damage variance is the only
// randomness in a battle, so tests pin it with a fixed Roller.
type Roller func() float64

// DefaultRoller draws from math/rand.
func DefaultRoller() float64 { return rand.Float64() }

// CombatState is the HP/shield pair of both players at one point in a round.
type CombatState struct {
	P1HP     int `json:"p1_hp"`
	P2HP     int `json:"p2_hp"`
	P1Shield int `json:"p1_shield"`
	P2Shield int `json:"p2_shield"`
}

// RoundResult is the outcome of resolving both pending moves.
type RoundResult struct {
	State   CombatState
	Entries []string
	Winner  models.Winner
}

// RollDamage scales a move's base value by a factor uniform in [0.8, 1.2].
func RollDamage(value int, roll Roller) int {
	return int(math.Floor(float64(value) * (0.8 + roll()*0.4)))
}

func isHealing(m models.Move) bool {
	d := strings.ToLower(m.Description)
	return strings.Contains(d, "heal") || strings.Contains(d, "recover")
}

// ApplyMove computes the effect of one move by the attacker against the
// other player. It never mutates its inputs.
func ApplyMove(move models.Move, attacker models.CardDefinition, attackerIsP1 bool, st CombatState, roll Roller) (CombatState, string) {
	ownHP, ownShield := &st.P2HP, &st.P2Shield
	foeHP, foeShield := &st.P1HP, &st.P1Shield
	if attackerIsP1 {
		ownHP, ownShield = &st.P1HP, &st.P1Shield
		foeHP, foeShield = &st.P2HP, &st.P2Shield
	}
	prefix := fmt.Sprintf("%s used %s.", attacker.Name, move.Name)

	if move.Type == models.MoveTypeDefense {
		if isHealing(move) {
			*ownHP = clamp(*ownHP+move.Value, 0, attacker.MaxHP)
			return st, prefix + " Recovered HP."
		}
		// Shields are replaced, never stacked.
		*ownShield = max(move.Value, 0)
		return st, prefix + " Gained Shield."
	}

	dmg := RollDamage(move.Value, roll)
	if *foeShield > 0 {
		if dmg >= *foeShield {
			rest := dmg - *foeShield
			*foeShield = 0
			*foeHP = max(*foeHP-rest, 0)
			if rest > 0 {
				return st, fmt.Sprintf("%s Shield broke! Dealt %d DMG.", prefix, rest)
			}
			return st, prefix + " Shield broke!"
		}
		*foeShield -= dmg
		return st, prefix + " Blocked."
	}
	*foeHP = max(*foeHP-dmg, 0)
	return st, fmt.Sprintf("%s Dealt %d DMG.", prefix, dmg)
}

// ResolveRound applies player1's move, then player2's move against the
// post-player1 state, and classifies the result.
func ResolveRound(p1Card, p2Card models.CardDefinition, p1Move, p2Move models.Move, st CombatState, roll Roller) RoundResult {
	st, e1 := ApplyMove(p1Move, p1Card, true, st, roll)
	st, e2 := ApplyMove(p2Move, p2Card, false, st, roll)
	return RoundResult{
		State:   st,
		Entries: []string{e1, e2},
		Winner:  ClassifyWinner(st.P1HP, st.P2HP),
	}
}

// ClassifyWinner maps post-round HP to a winner; WinnerNone means the battle goes on.
func ClassifyWinner(p1HP, p2HP int) models.Winner {
	switch {
	case p1HP <= 0 && p2HP <= 0:
		return models.WinnerDraw
	case p1HP <= 0:
		return models.WinnerPlayer2
	case p2HP <= 0:
		return models.WinnerPlayer1
	default:
		return models.WinnerNone
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
