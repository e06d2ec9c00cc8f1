package sim

import (
	"math"

	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

// positionEpsilon suppresses patches for sub-visible movement deltas.
const positionEpsilon = 1e-6

// The setters below are write barriers: every accepted mutation bumps the
// entity version, marks it dirty for the checkpoint writer, and appends the
// matching replication patch. State outside these barriers must not move.

func (w *World) setCharacterPosition(c *state.Character, x, y float64) {
	if math.Abs(c.X-x) < positionEpsilon && math.Abs(c.Y-y) < positionEpsilon {
		return
	}
	c.X = x
	c.Y = y
	c.Version++
	c.Dirty = true
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterPos, EntityID: c.ID, Payload: journal.PositionPayload{X: x, Y: y}})
}

func (w *World) setCharacterFacing(c *state.Character, facing state.FacingDirection) {
	if c.Facing == facing {
		return
	}
	c.Facing = facing
	c.Version++
	c.Dirty = true
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterFacing, EntityID: c.ID, Payload: journal.FacingPayload{Facing: facing}})
}

func (w *World) setCharacterHealth(c *state.Character, health int) {
	if health > c.MaxHealth {
		health = c.MaxHealth
	}
	if health < 0 {
		health = 0
	}
	if c.Health == health {
		return
	}
	c.Health = health
	c.Version++
	c.Dirty = true
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterHealth, EntityID: c.ID, Payload: journal.HealthPayload{Health: health, MaxHealth: c.MaxHealth}})
}

func (w *World) setCharacterMana(c *state.Character, mana int) {
	if mana > c.MaxMana {
		mana = c.MaxMana
	}
	if mana < 0 {
		mana = 0
	}
	if c.Mana == mana {
		return
	}
	c.Mana = mana
	c.Version++
	c.Dirty = true
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterMana, EntityID: c.ID, Payload: journal.ManaPayload{Mana: mana, MaxMana: c.MaxMana}})
}

func (w *World) setEnemyPosition(e *state.Enemy, x, y float64) {
	if math.Abs(e.X-x) < positionEpsilon && math.Abs(e.Y-y) < positionEpsilon {
		return
	}
	e.X = x
	e.Y = y
	e.Version++
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchEnemyPos, EntityID: e.ID, Payload: journal.PositionPayload{X: x, Y: y}})
}

func (w *World) setEnemyHealth(e *state.Enemy, health int) {
	if health > e.MaxHealth {
		health = e.MaxHealth
	}
	if health < 0 {
		health = 0
	}
	if e.Health == health {
		return
	}
	e.Health = health
	e.Version++
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchEnemyHealth, EntityID: e.ID, Payload: journal.HealthPayload{Health: health, MaxHealth: e.MaxHealth}})
}

func (w *World) markEnemyEnraged(e *state.Enemy) {
	if e.Enraged {
		return
	}
	e.Enraged = true
	e.Version++
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchEnemyEnraged, EntityID: e.ID, Payload: journal.EnragePayload{Multiplier: e.EnrageMultiplier}})
}

func (w *World) appendInventoryPatch(c *state.Character) {
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterInventory, EntityID: c.ID, Payload: journal.InventoryPayload{
		Slots: c.Inventory.Clone().Slots,
	}})
}

func (w *World) appendEquipmentPatch(c *state.Character) {
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterEquipment, EntityID: c.ID, Payload: journal.EquipmentPayload{
		Slots: c.Equipment.Clone().Slots,
	}})
}
