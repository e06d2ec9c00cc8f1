package sim

import (
	"context"
	"math"

	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

// runEnemyAI drives every live enemy through one decision step: enrage
// check, leash check, target selection off the threat table, then chase or
// strike.
func (w *World) runEnemyAI(ctx context.Context, tick uint64, dt float64) {
	w.store.ForEachEnemy(func(e *state.Enemy) {
		if !e.Alive() {
			return
		}
		def, err := w.catalog.Enemy(e.DefinitionID)
		if err != nil {
			return
		}

		e.Threat.Decay()

		if def.EnrageTicks > 0 && !e.Enraged && tick-e.SpawnTick >= def.EnrageTicks {
			w.markEnemyEnraged(e)
			w.journal.AppendEvent(journal.Event{Kind: journal.EventEnrage, Tick: tick, Payload: journal.EnrageEvent{
				EnemyID:    e.ID,
				Multiplier: e.EnrageMultiplier,
			}})
		}

		if def.LeashRadius > 0 && math.Hypot(e.X-e.HomeX, e.Y-e.HomeY) > def.LeashRadius {
			w.resetEnemy(e, dt)
			return
		}

		target := w.selectTarget(e, def.LeashRadius)
		if target == nil {
			target = w.proximityAggro(e, def.AggroRadius, tick)
		}
		if target == nil {
			// Keep the last target through brief out-of-range windows;
			// forget it only once it is dead or gone. Leash resets clear
			// it separately.
			if e.LastTargetID != "" {
				if c, err := w.store.Character(e.LastTargetID); err != nil || !c.Alive() {
					e.LastTargetID = ""
				}
			}
			w.walkHome(e, dt)
			return
		}
		e.LastTargetID = target.ID

		distance := math.Hypot(e.X-target.X, e.Y-target.Y)
		melee := def.MeleeRange
		if melee <= 0 {
			melee = 40
		}
		if distance > melee {
			w.moveToward(e, target.X, target.Y, dt)
			return
		}
		if tick < e.NextAttackTick {
			return
		}
		attackTicks := def.AttackTicks
		if attackTicks == 0 {
			attackTicks = defaultAttackTicks
		}
		e.NextAttackTick = tick + attackTicks
		hit := w.resolver.EnemyStrike(ctx, e, target, tick)
		if hit.Fatal {
			e.Threat.Remove(target.ID)
			if e.LastTargetID == target.ID {
				e.LastTargetID = ""
			}
		}
	})
}

// selectTarget picks the highest-threat character that is alive and inside
// the enemy's leash circle around home. Falls back to the previous target
// while it remains eligible so momentary threat table churn does not cause
// target flicker.
func (w *World) selectTarget(e *state.Enemy, leash float64) *state.Character {
	eligible := func(id string) bool {
		c, err := w.store.Character(id)
		if err != nil || !c.Alive() {
			return false
		}
		if leash > 0 && math.Hypot(c.X-e.HomeX, c.Y-e.HomeY) > leash {
			return false
		}
		return true
	}
	if e.LastTargetID != "" && eligible(e.LastTargetID) {
		if c, err := w.store.Character(e.LastTargetID); err == nil {
			return c
		}
	}
	id, ok := e.Threat.Target(eligible)
	if !ok {
		return nil
	}
	c, err := w.store.Character(id)
	if err != nil {
		return nil
	}
	return c
}

// proximityAggro seeds the threat table when it is empty: the nearest live
// character inside the aggro radius gains one point of threat.
func (w *World) proximityAggro(e *state.Enemy, radius float64, tick uint64) *state.Character {
	if radius <= 0 || e.Threat.Len() > 0 {
		return nil
	}
	var nearest *state.Character
	best := radius
	w.store.ForEachCharacter(func(c *state.Character) {
		if !c.Alive() {
			return
		}
		d := math.Hypot(c.X-e.X, c.Y-e.Y)
		if d <= best {
			best = d
			nearest = c
		}
	})
	if nearest == nil {
		return nil
	}
	e.Threat.Add(nearest.ID, 1, tick)
	return nearest
}

// resetEnemy disengages a leashed enemy: threat wiped, health restored, walk
// back toward home.
func (w *World) resetEnemy(e *state.Enemy, dt float64) {
	e.Threat.Reset()
	e.LastTargetID = ""
	if e.Health != e.MaxHealth {
		w.setEnemyHealth(e, e.MaxHealth)
	}
	w.walkHome(e, dt)
}

func (w *World) walkHome(e *state.Enemy, dt float64) {
	if math.Hypot(e.X-e.HomeX, e.Y-e.HomeY) < positionEpsilon {
		return
	}
	w.moveToward(e, e.HomeX, e.HomeY, dt)
}

func (w *World) moveToward(e *state.Enemy, x, y float64, dt float64) {
	dx, dy := x-e.X, y-e.Y
	distance := math.Hypot(dx, dy)
	if distance < positionEpsilon {
		return
	}
	step := EnemyMoveSpeed * dt
	if step >= distance {
		w.setEnemyPosition(e, x, y)
		return
	}
	w.setEnemyPosition(e, e.X+dx/distance*step, e.Y+dy/distance*step)
}
