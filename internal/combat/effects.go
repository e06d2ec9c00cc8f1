package combat

import (
	"context"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/logging"
	logcombat "github.com/jbuehler23/eryndor-mmo/logging/combat"
)

// TickEffects advances every timed effect on the actor for one tick: due
// damage-over-time pulses land, expired effects revert their stat change and
// drop off. Returns true when a pulse killed the actor this tick.
func (r *Resolver) TickEffects(ctx context.Context, a *state.Actor, tick uint64) bool {
	if len(a.Effects) == 0 {
		return false
	}
	_, isEnemy := r.enemyFor(a.ID)

	fatal := false
	kept := a.Effects[:0]
	for _, inst := range a.Effects {
		if inst.Kind == catalog.EffectDamageOverTime && a.Alive() && inst.NextTick > 0 && tick >= inst.NextTick {
			inst.NextTick += inst.IntervalTicks
			if r.pulse(ctx, a, inst, tick, isEnemy) {
				fatal = true
			}
		}
		if tick >= inst.ExpiresTick {
			applyStat(a, inst.Stat, -inst.Amount)
			a.Version++
			logcombat.EffectExpired(ctx, r.pub, tick, actorRef(a.ID, isEnemy), logcombat.EffectPayload{
				Ability: inst.AbilityID,
				Effect:  string(inst.Kind),
			}, nil)
			continue
		}
		kept = append(kept, inst)
	}
	a.Effects = kept
	if len(a.Effects) == 0 {
		a.Effects = nil
	}
	return fatal
}

// pulse lands one damage-over-time application. Pulse damage is flat and
// bypasses mitigation; the source keeps earning threat for every pulse.
func (r *Resolver) pulse(ctx context.Context, a *state.Actor, inst state.EffectInstance, tick uint64, isEnemy bool) bool {
	amount := inst.TickDamage
	if amount <= 0 {
		return false
	}
	a.Health -= amount
	if a.Health < 0 {
		a.Health = 0
	}
	a.Version++

	patchKind := journal.PatchCharacterHealth
	if isEnemy {
		patchKind = journal.PatchEnemyHealth
		if enemy, ok := r.enemyFor(a.ID); ok {
			enemy.Threat.Add(inst.SourceID, float64(amount), tick)
		}
	}
	r.journal.AppendPatch(journal.Patch{Kind: patchKind, EntityID: a.ID, Payload: journal.HealthPayload{
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
	}})

	fatal := a.Health == 0
	r.journal.AppendEvent(journal.Event{Kind: journal.EventCombat, Tick: tick, Payload: journal.CombatEvent{
		AttackerID: inst.SourceID,
		TargetID:   a.ID,
		AbilityID:  inst.AbilityID,
		Amount:     amount,
		Effect:     string(catalog.EffectDamageOverTime),
		Fatal:      fatal,
	}})
	logcombat.Damage(ctx, r.pub, tick, charRef(inst.SourceID), actorRef(a.ID, isEnemy), logcombat.DamagePayload{
		Ability:      inst.AbilityID,
		Amount:       amount,
		TargetHealth: a.Health,
		Effect:       string(catalog.EffectDamageOverTime),
	}, nil)

	if fatal {
		if enemy, ok := r.enemyFor(a.ID); ok {
			enemy.DeadSinceTick = tick
		}
		r.journal.AppendEvent(journal.Event{Kind: journal.EventDeath, Tick: tick, Payload: journal.DeathEvent{
			EntityID: a.ID,
			KillerID: inst.SourceID,
		}})
		logcombat.Defeat(ctx, r.pub, tick, charRef(inst.SourceID), actorRef(a.ID, isEnemy), logcombat.DefeatPayload{
			Ability: inst.AbilityID,
			Effect:  string(catalog.EffectDamageOverTime),
		}, nil)
	}
	return fatal
}

func (r *Resolver) enemyFor(id string) (*state.Enemy, bool) {
	enemy, err := r.store.Enemy(id)
	if err != nil {
		return nil, false
	}
	return enemy, true
}

func actorRef(id string, isEnemy bool) logging.EntityRef {
	if isEnemy {
		return enemyRef(id)
	}
	return charRef(id)
}

// ClearEffects strips every timed effect from the actor, reverting any stat
// modification first. Used on death and respawn.
func ClearEffects(a *state.Actor) {
	for _, inst := range a.Effects {
		applyStat(a, inst.Stat, -inst.Amount)
	}
	if len(a.Effects) > 0 {
		a.Effects = nil
		a.Version++
	}
}

// Debuffed reports whether the actor currently carries the given debuff.
func Debuffed(a *state.Actor, kind catalog.DebuffKind) bool {
	for _, inst := range a.Effects {
		if inst.Kind == catalog.EffectDebuff && inst.Debuff == kind {
			return true
		}
	}
	return false
}

// SpeedMultiplier folds every active speed modifier into one movement scale.
// A stunned or rooted actor moves at zero regardless of other modifiers.
func SpeedMultiplier(a *state.Actor) float64 {
	if Debuffed(a, catalog.DebuffStun) || Debuffed(a, catalog.DebuffRoot) {
		return 0
	}
	scale := 1.0
	for _, inst := range a.Effects {
		if inst.Stat == "speed" {
			scale += inst.Amount
		}
	}
	if scale < 0 {
		return 0
	}
	return scale
}

// applyStat adds a flat buff or debuff amount to a stat pool. Speed carries
// no actor field; SpeedMultiplier reads it straight off the effect list.
func applyStat(a *state.Actor, stat string, amount float64) {
	switch stat {
	case "attack":
		a.Attack += int(amount)
	case "defense":
		a.Defense += int(amount)
	}
}
