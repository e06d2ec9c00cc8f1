package quest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/progression"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/logging"
	logquests "github.com/jbuehler23/eryndor-mmo/logging/quests"
)

// Validation failures. Expected and client-triggerable; they reject the
// intent with no mutation and are never fatal.
var (
	ErrRequirementNotMet    = errors.New("quest: requirement not met")
	ErrObjectivesIncomplete = errors.New("quest: objectives incomplete")
	ErrAlreadyAccepted      = errors.New("quest: already accepted")
	ErrAlreadyCompleted     = errors.New("quest: already completed")
	ErrNotAccepted          = errors.New("quest: not accepted")
	ErrWrongNPC             = errors.New("quest: npc does not broker this quest")
)

// Gate drives the per-(character, quest) state machine:
// NotAccepted -> Accepted -> Completed, with Completed terminal. Objectives
// advance from game events, clamped at their targets; turn-in is an explicit
// player action, objectives reaching target never auto-complete.
type Gate struct {
	catalog     *catalog.Catalog
	journal     *journal.Journal
	progression *progression.Engine
	pub         logging.Publisher
}

func NewGate(cat *catalog.Catalog, jrnl *journal.Journal, prog *progression.Engine, pub logging.Publisher) *Gate {
	if pub == nil {
		pub = logging.NopPublisher{}
	}
	return &Gate{catalog: cat, journal: jrnl, progression: prog, pub: pub}
}

// MeetsRequirement evaluates an unlock requirement against a character. All
// set fields must hold.
func MeetsRequirement(c *state.Character, req catalog.UnlockRequirement) bool {
	if c == nil {
		return false
	}
	if req.Level > 0 && c.Level < req.Level {
		return false
	}
	if req.QuestID != "" {
		progress, ok := c.QuestLog[req.QuestID]
		if !ok || progress.Status != state.QuestCompleted {
			return false
		}
	}
	if req.Weapon != "" && req.WeaponProficiency > 0 {
		if c.WeaponProf.Level(req.Weapon) < req.WeaponProficiency {
			return false
		}
	}
	return true
}

// Accept transitions NotAccepted -> Accepted. Fails without mutation when
// the quest is unknown, the NPC does not offer it, the prerequisite is
// unmet, or the quest was already accepted or completed.
func (g *Gate) Accept(ctx context.Context, c *state.Character, questID, npcID string, tick uint64) error {
	def, err := g.catalog.Quest(questID)
	if err != nil {
		return err
	}
	if def.GiverNPC != "" && def.GiverNPC != npcID {
		g.logRejected(ctx, c, questID, tick, "wrong npc")
		return ErrWrongNPC
	}
	if progress, ok := c.QuestLog[questID]; ok {
		if progress.Status == state.QuestCompleted {
			g.logRejected(ctx, c, questID, tick, "already completed")
			return ErrAlreadyCompleted
		}
		g.logRejected(ctx, c, questID, tick, "already accepted")
		return ErrAlreadyAccepted
	}
	if !MeetsRequirement(c, def.Requirement) {
		g.logRejected(ctx, c, questID, tick, "requirement not met")
		return ErrRequirementNotMet
	}

	progress := &state.QuestProgress{
		Status:     state.QuestAccepted,
		Objectives: make([]int, len(def.Objectives)),
	}
	// Proficiency earned before acceptance still counts: seed
	// reach-proficiency objectives from the held tracks.
	for i, objective := range def.Objectives {
		if objective.Kind == catalog.ObjectiveReachProficiency && c.WeaponProf.Level(objective.Weapon) >= objective.Level {
			progress.Objectives[i] = objectiveTarget(objective)
		}
	}
	c.QuestLog[questID] = progress
	c.Dirty = true

	g.emitUpdate(c, questID, progress, tick)
	logquests.Accepted(ctx, g.pub, tick, characterRef(c), logquests.Payload{Quest: questID})
	return nil
}

// TurnIn transitions Accepted -> Completed. Requires every objective at its
// target and the correct NPC. Grants the configured rewards exactly once.
func (g *Gate) TurnIn(ctx context.Context, c *state.Character, questID, npcID string, tick uint64) error {
	def, err := g.catalog.Quest(questID)
	if err != nil {
		return err
	}
	progress, ok := c.QuestLog[questID]
	if !ok {
		g.logRejected(ctx, c, questID, tick, "not accepted")
		return ErrNotAccepted
	}
	if progress.Status == state.QuestCompleted {
		g.logRejected(ctx, c, questID, tick, "already completed")
		return ErrAlreadyCompleted
	}
	if def.GiverNPC != "" && def.GiverNPC != npcID {
		g.logRejected(ctx, c, questID, tick, "wrong npc")
		return ErrWrongNPC
	}
	for i, objective := range def.Objectives {
		if progress.Objectives[i] < objectiveTarget(objective) {
			g.logRejected(ctx, c, questID, tick, "objectives incomplete")
			return ErrObjectivesIncomplete
		}
	}

	progress.Status = state.QuestCompleted
	c.Dirty = true

	if def.RewardXP > 0 {
		g.progression.GrantExperience(ctx, c, def.RewardXP, tick)
	}
	for _, grant := range def.RewardItems {
		c.Inventory.Add(grant.ItemID, grant.Quantity)
	}
	if len(def.RewardItems) > 0 {
		g.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterInventory, EntityID: c.ID, Payload: journal.InventoryPayload{
			Slots: c.Inventory.Clone().Slots,
		}})
	}
	if def.RewardAbility != "" {
		g.progression.UnlockAbility(ctx, c, def.RewardAbility, tick, fmt.Sprintf("quest %s", questID))
	}

	g.emitUpdate(c, questID, progress, tick)
	logquests.Completed(ctx, g.pub, tick, characterRef(c), logquests.Payload{Quest: questID})
	return nil
}

// RecordKill advances kill objectives for the defeated enemy type.
func (g *Gate) RecordKill(ctx context.Context, c *state.Character, enemyDefID string, tick uint64) {
	g.advance(ctx, c, tick, func(obj catalog.ObjectiveDefinition) int {
		if obj.Kind == catalog.ObjectiveKillEnemy && obj.Target == enemyDefID {
			return 1
		}
		return 0
	})
}

// RecordItem synchronizes obtain-item objectives with the held quantity.
func (g *Gate) RecordItem(ctx context.Context, c *state.Character, itemID string, tick uint64) {
	held := c.Inventory.Count(itemID)
	g.sync(ctx, c, tick, func(obj catalog.ObjectiveDefinition) (int, bool) {
		if obj.Kind == catalog.ObjectiveObtainItem && obj.Target == itemID {
			return held, true
		}
		return 0, false
	})
}

// RecordAbilityUse advances use-ability objectives.
func (g *Gate) RecordAbilityUse(ctx context.Context, c *state.Character, abilityID string, tick uint64) {
	g.advance(ctx, c, tick, func(obj catalog.ObjectiveDefinition) int {
		if obj.Kind == catalog.ObjectiveUseAbility && obj.Target == abilityID {
			return 1
		}
		return 0
	})
}

// RecordProficiency marks reach-proficiency objectives satisfied by the new
// level.
func (g *Gate) RecordProficiency(ctx context.Context, c *state.Character, weapon catalog.WeaponKind, level int, tick uint64) {
	g.sync(ctx, c, tick, func(obj catalog.ObjectiveDefinition) (int, bool) {
		if obj.Kind == catalog.ObjectiveReachProficiency && obj.Weapon == weapon && level >= obj.Level {
			return 1, true
		}
		return 0, false
	})
}

// RecordTalk advances talk-to-NPC objectives.
func (g *Gate) RecordTalk(ctx context.Context, c *state.Character, npcID string, tick uint64) {
	g.advance(ctx, c, tick, func(obj catalog.ObjectiveDefinition) int {
		if obj.Kind == catalog.ObjectiveTalkToNPC && obj.Target == npcID {
			return 1
		}
		return 0
	})
}

// advance increments matching objective counters across every accepted
// quest, clamping at target.
func (g *Gate) advance(ctx context.Context, c *state.Character, tick uint64, delta func(catalog.ObjectiveDefinition) int) {
	g.reconcile(ctx, c, tick, func(obj catalog.ObjectiveDefinition, current int) (int, bool) {
		d := delta(obj)
		if d <= 0 {
			return 0, false
		}
		return current + d, true
	})
}

// sync sets matching counters to an absolute value, clamping at target.
func (g *Gate) sync(ctx context.Context, c *state.Character, tick uint64, resolve func(catalog.ObjectiveDefinition) (int, bool)) {
	g.reconcile(ctx, c, tick, func(obj catalog.ObjectiveDefinition, current int) (int, bool) {
		value, matched := resolve(obj)
		return value, matched
	})
}

// reconcile walks every accepted quest and applies the next-counter function
// to matching objectives. Counters only rise and never exceed their targets.
func (g *Gate) reconcile(ctx context.Context, c *state.Character, tick uint64, next func(obj catalog.ObjectiveDefinition, current int) (int, bool)) {
	if c == nil {
		return
	}
	for questID, progress := range c.QuestLog {
		if progress.Status != state.QuestAccepted {
			continue
		}
		def, err := g.catalog.Quest(questID)
		if err != nil {
			// Entry hot-swapped away; leave progress untouched.
			continue
		}
		changed := false
		for i, objective := range def.Objectives {
			if i >= len(progress.Objectives) {
				break
			}
			value, matched := next(objective, progress.Objectives[i])
			if !matched {
				continue
			}
			target := objectiveTarget(objective)
			if value > target {
				value = target
			}
			if value > progress.Objectives[i] {
				progress.Objectives[i] = value
				changed = true
				logquests.Progress(ctx, g.pub, tick, characterRef(c), logquests.Payload{
					Quest:    questID,
					Current:  value,
					Required: target,
				})
			}
		}
		if changed {
			c.Dirty = true
			g.emitUpdate(c, questID, progress, tick)
		}
	}
}

func (g *Gate) emitUpdate(c *state.Character, questID string, progress *state.QuestProgress, tick uint64) {
	objectives := append([]int(nil), progress.Objectives...)
	g.journal.AppendEvent(journal.Event{Kind: journal.EventQuestUpdate, Tick: tick, Payload: journal.QuestUpdateEvent{
		CharacterID: c.ID,
		QuestID:     questID,
		Status:      progress.Status,
		Objectives:  objectives,
	}})
	g.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterQuestLog, EntityID: c.ID, Payload: journal.QuestLogPayload{
		QuestID:    questID,
		Status:     progress.Status,
		Objectives: objectives,
	}})
}

func (g *Gate) logRejected(ctx context.Context, c *state.Character, questID string, tick uint64, reason string) {
	logquests.Rejected(ctx, g.pub, tick, characterRef(c), logquests.Payload{Quest: questID, Reason: reason})
}

func objectiveTarget(obj catalog.ObjectiveDefinition) int {
	if obj.Count > 0 {
		return obj.Count
	}
	return 1
}

func characterRef(c *state.Character) logging.EntityRef {
	return logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCharacter}
}
