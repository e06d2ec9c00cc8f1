package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/combat"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/progression"
	"github.com/jbuehler23/eryndor-mmo/internal/quest"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/internal/threat"
	"github.com/jbuehler23/eryndor-mmo/logging"
	loglifecycle "github.com/jbuehler23/eryndor-mmo/logging/lifecycle"
)

const (
	// CharacterMoveSpeed is base character movement in world units per second.
	CharacterMoveSpeed = 120.0
	// EnemyMoveSpeed is base enemy movement in world units per second.
	EnemyMoveSpeed = 90.0
	// InteractRange is the maximum distance for NPC interactions.
	InteractRange = 60.0

	defaultAttackTicks  uint64 = 20
	defaultDespawnTicks uint64 = 100
	defaultRespawnTicks uint64 = 300
)

// Rejection reason kinds beyond the combat failure kinds.
const (
	RejectActorDead     = "actor_dead"
	RejectItemMissing   = "item_missing"
	RejectItemUnusable  = "item_unusable"
	RejectOutOfRange    = "out_of_range"
	RejectNotEnoughGold = "not_enough_gold"
	RejectQuestState    = "quest_state"
	RejectUnknown       = "unknown_command"
)

// SpawnPoint anchors one respawning enemy in the world.
type SpawnPoint struct {
	EnemyID string
	X       float64
	Y       float64
}

// NPCPlacement positions a catalog NPC in the world.
type NPCPlacement struct {
	NPCID string
	X     float64
	Y     float64
}

// WorldConfig tunes the authoritative simulation.
type WorldConfig struct {
	Width             float64
	Height            float64
	TickRate          int
	Seed              int64
	SpawnX            float64
	SpawnY            float64
	RespawnDelayTicks uint64
	ThreatPolicy      threat.Policy
	Spawns            []SpawnPoint
	NPCs              []NPCPlacement
}

// DefaultWorldConfig returns the built-in starter zone layout.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Width:             2000,
		Height:            2000,
		TickRate:          10,
		SpawnX:            200,
		SpawnY:            200,
		RespawnDelayTicks: 100,
		Spawns: []SpawnPoint{
			{EnemyID: "slime", X: 500, Y: 400},
			{EnemyID: "slime", X: 560, Y: 430},
			{EnemyID: "slime", X: 520, Y: 480},
			{EnemyID: "goblin", X: 900, Y: 700},
			{EnemyID: "goblin", X: 950, Y: 760},
			{EnemyID: "wolf", X: 1400, Y: 1100},
		},
		NPCs: []NPCPlacement{
			{NPCID: "trainer", X: 220, Y: 180},
			{NPCID: "quartermaster", X: 260, Y: 180},
		},
	}
}

type enemySpawn struct {
	point     SpawnPoint
	enemyID   string
	respawnAt uint64
}

// StepResult carries one tick's replication delta and command rejections.
type StepResult struct {
	Tick       uint64
	Delta      journal.TickDelta
	Rejections []Rejection
}

// World owns the authoritative simulation state. All mutation happens on the
// tick goroutine; the store's locking exists only for read-side snapshots.
type World struct {
	cfg      WorldConfig
	catalog  *catalog.Catalog
	store    *state.Store
	journal  *journal.Journal
	prog     *progression.Engine
	gate     *quest.Gate
	resolver *combat.Resolver
	pub      logging.Publisher
	rng      *rand.Rand

	currentTick uint64
	spawns      []*enemySpawn
	deadChars   map[string]uint64
	rejections  []Rejection
}

// NewWorld wires the simulation collaborators and seeds the spawn points.
func NewWorld(cfg WorldConfig, cat *catalog.Catalog, jrnl *journal.Journal, pub logging.Publisher) *World {
	if pub == nil {
		pub = logging.NopPublisher{}
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 10
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	store := state.NewStore()
	prog := progression.NewEngine(cat, jrnl, pub, progression.DefaultProficiencyCap)
	gate := quest.NewGate(cat, jrnl, prog, pub)
	prog.OnWeaponLevel(gate.RecordProficiency)
	w := &World{
		cfg:       cfg,
		catalog:   cat,
		store:     store,
		journal:   jrnl,
		prog:      prog,
		gate:      gate,
		resolver:  combat.NewResolver(cat, store, jrnl, prog, pub),
		pub:       pub,
		rng:       rand.New(rand.NewSource(seed)),
		deadChars: make(map[string]uint64),
	}
	for _, point := range cfg.Spawns {
		w.spawns = append(w.spawns, &enemySpawn{point: point})
	}
	w.spawnInitialEnemies()
	return w
}

func (w *World) Config() WorldConfig       { return w.cfg }
func (w *World) Store() *state.Store       { return w.store }
func (w *World) Journal() *journal.Journal { return w.journal }
func (w *World) Catalog() *catalog.Catalog { return w.catalog }
func (w *World) QuestGate() *quest.Gate    { return w.gate }
func (w *World) CurrentTick() uint64       { return w.currentTick }

// SpawnCharacter creates a character at the world spawn point and registers
// it with the store.
func (w *World) SpawnCharacter(ctx context.Context, id, name string, class state.Class) (*state.Character, error) {
	c := state.NewCharacter(id, name, class, w.cfg.SpawnX, w.cfg.SpawnY, progression.LevelThreshold(1))
	if err := w.store.AddCharacter(c); err != nil {
		return nil, err
	}
	loglifecycle.Joined(ctx, w.pub, w.currentTick, logging.EntityRef{ID: id, Kind: logging.EntityKindCharacter}, loglifecycle.Payload{
		Class: string(class),
	})
	return c, nil
}

// RestoreCharacter registers a character loaded from persistence.
func (w *World) RestoreCharacter(ctx context.Context, c *state.Character) error {
	if err := w.store.AddCharacter(c); err != nil {
		return err
	}
	loglifecycle.Joined(ctx, w.pub, w.currentTick, logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCharacter}, loglifecycle.Payload{
		Class:  string(c.Class),
		Reason: "restored",
	})
	return nil
}

// RemoveCharacter drops a character from the world, returning its final
// snapshot for the checkpoint writer.
func (w *World) RemoveCharacter(ctx context.Context, id string) (*state.Character, error) {
	c, err := w.store.RemoveCharacter(id)
	if err != nil {
		return nil, err
	}
	delete(w.deadChars, id)
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterRemoved, EntityID: id})
	loglifecycle.Left(ctx, w.pub, w.currentTick, logging.EntityRef{ID: id, Kind: logging.EntityKindCharacter}, loglifecycle.Payload{})
	return c.Snapshot(), nil
}

// Step advances the simulation by a single tick applying all staged commands.
func (w *World) Step(ctx context.Context, tick uint64, dt float64, commands []Command) StepResult {
	if dt <= 0 {
		dt = 1.0 / float64(w.cfg.TickRate)
	}
	w.currentTick = tick
	w.rejections = w.rejections[:0]

	for _, cmd := range commands {
		w.applyCommand(ctx, cmd, tick)
	}
	w.integrateMovement(tick, dt)
	w.runAutoAttacks(ctx, tick)
	w.runEnemyAI(ctx, tick, dt)
	w.tickEffects(ctx, tick)
	w.resolveDeaths(ctx, tick)
	w.respawnEnemies(ctx, tick)
	w.regenerate(tick)

	result := StepResult{Tick: tick, Delta: w.journal.DrainTick(tick)}
	if len(w.rejections) > 0 {
		result.Rejections = append([]Rejection(nil), w.rejections...)
	}
	return result
}

func (w *World) reject(cmd Command, kind, reason string) {
	w.rejections = append(w.rejections, Rejection{
		CommandID: cmd.ID,
		ActorID:   cmd.ActorID,
		Type:      string(cmd.Type),
		Kind:      kind,
		Reason:    reason,
	})
}

func (w *World) applyCommand(ctx context.Context, cmd Command, tick uint64) {
	c, err := w.store.Character(cmd.ActorID)
	if err != nil {
		return
	}
	if !c.Alive() && cmd.Type != CommandRespawn && cmd.Type != CommandSaveAck {
		w.reject(cmd, RejectActorDead, "dead characters can only respawn")
		return
	}

	switch cmd.Type {
	case CommandMove:
		if cmd.Move == nil {
			return
		}
		w.handleMove(c, cmd.Move)
	case CommandAttack:
		if cmd.Attack == nil {
			return
		}
		c.TargetID = cmd.Attack.TargetID
	case CommandUseAbility:
		if cmd.Ability == nil {
			return
		}
		outcome, failure := w.resolver.UseAbility(ctx, c, cmd.Ability.AbilityID, cmd.Ability.TargetID, tick)
		if failure != nil {
			w.reject(cmd, string(failure.Kind), failure.Reason)
			return
		}
		w.gate.RecordAbilityUse(ctx, c, outcome.AbilityID, tick)
		w.settleHits(ctx, c, outcome.Hits, tick)
	case CommandUseItem:
		if cmd.Item == nil {
			return
		}
		w.handleUseItem(ctx, c, cmd, tick)
	case CommandEquip:
		if cmd.Item == nil {
			return
		}
		w.handleEquip(c, cmd)
	case CommandBuyItem:
		if cmd.Item == nil {
			return
		}
		w.handleBuyItem(ctx, c, cmd, tick)
	case CommandAcceptQuest:
		if cmd.Quest == nil {
			return
		}
		if err := w.gate.Accept(ctx, c, cmd.Quest.QuestID, cmd.Quest.NPCID, tick); err != nil {
			w.reject(cmd, questRejectKind(err), err.Error())
		}
	case CommandTurnInQuest:
		if cmd.Quest == nil {
			return
		}
		if err := w.gate.TurnIn(ctx, c, cmd.Quest.QuestID, cmd.Quest.NPCID, tick); err != nil {
			w.reject(cmd, questRejectKind(err), err.Error())
		}
	case CommandInteractNPC:
		if cmd.NPC == nil {
			return
		}
		w.handleInteractNPC(ctx, c, cmd, tick)
	case CommandRespawn:
		if c.Alive() {
			return
		}
		w.respawnCharacter(ctx, c, tick)
	case CommandSaveAck:
		if cmd.Save != nil && c.Version == cmd.Save.Version {
			c.Dirty = false
		}
	default:
		w.reject(cmd, RejectUnknown, "unrecognized command type")
	}
}

func (w *World) handleMove(c *state.Character, move *MoveCommand) {
	dx, dy := move.DX, move.DY
	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}
	c.IntentX = dx
	c.IntentY = dy
	next := deriveFacing(dx, dy, c.Facing)
	if dx == 0 && dy == 0 && move.Facing != "" {
		next = move.Facing
	}
	w.setCharacterFacing(c, next)
}

func (w *World) handleUseItem(ctx context.Context, c *state.Character, cmd Command, tick uint64) {
	itemID := cmd.Item.ItemID
	if c.Inventory.Count(itemID) < 1 {
		w.reject(cmd, RejectItemMissing, "item not in inventory")
		return
	}
	item, err := w.catalog.Item(itemID)
	if err != nil || item.Class != catalog.ItemClassConsumable || item.Heal <= 0 {
		w.reject(cmd, RejectItemUnusable, "item cannot be consumed")
		return
	}
	if !c.Inventory.Remove(itemID, 1) {
		w.reject(cmd, RejectItemMissing, "item not in inventory")
		return
	}
	w.appendInventoryPatch(c)
	w.setCharacterHealth(c, c.Health+item.Heal)
	w.gate.RecordItem(ctx, c, itemID, tick)
}

func (w *World) handleEquip(c *state.Character, cmd Command) {
	itemID := cmd.Item.ItemID
	if c.Inventory.Count(itemID) < 1 {
		w.reject(cmd, RejectItemMissing, "item not in inventory")
		return
	}
	item, err := w.catalog.Item(itemID)
	if err != nil || item.Slot == "" || (item.Class != catalog.ItemClassWeapon && item.Class != catalog.ItemClassArmor) {
		w.reject(cmd, RejectItemUnusable, "item cannot be equipped")
		return
	}
	c.Inventory.Remove(itemID, 1)
	if previous, had := c.Equipment.Set(item.Slot, itemID); had {
		c.Inventory.Add(previous, 1)
	}
	c.Version++
	c.Dirty = true
	w.appendInventoryPatch(c)
	w.appendEquipmentPatch(c)
}

func (w *World) handleBuyItem(ctx context.Context, c *state.Character, cmd Command, tick uint64) {
	placement, ok := w.npcPlacement(cmd.Item.NPCID)
	if ok && !w.withinInteractRange(c, placement) {
		w.reject(cmd, RejectOutOfRange, "too far from vendor")
		return
	}
	npc, err := w.catalog.NPC(cmd.Item.NPCID)
	if err != nil {
		w.reject(cmd, RejectItemUnusable, "unknown vendor")
		return
	}
	itemID := cmd.Item.ItemID
	if !contains(npc.Wares, itemID) {
		w.reject(cmd, RejectItemUnusable, "vendor does not sell that")
		return
	}
	item, err := w.catalog.Item(itemID)
	if err != nil {
		w.reject(cmd, RejectItemMissing, "unknown item")
		return
	}
	if item.GoldCost > 0 && c.Inventory.Count("gold") < item.GoldCost {
		w.reject(cmd, RejectNotEnoughGold, "not enough gold")
		return
	}
	if item.GoldCost > 0 {
		c.Inventory.Remove("gold", item.GoldCost)
	}
	c.Inventory.Add(itemID, 1)
	c.Version++
	c.Dirty = true
	w.appendInventoryPatch(c)
	w.gate.RecordItem(ctx, c, itemID, tick)
}

func (w *World) handleInteractNPC(ctx context.Context, c *state.Character, cmd Command, tick uint64) {
	placement, ok := w.npcPlacement(cmd.NPC.NPCID)
	if ok && !w.withinInteractRange(c, placement) {
		w.reject(cmd, RejectOutOfRange, "too far away")
		return
	}
	w.gate.RecordTalk(ctx, c, cmd.NPC.NPCID, tick)
}

// settleHits converts fatal hits into kill credit for the attacker.
func (w *World) settleHits(ctx context.Context, killer *state.Character, hits []combat.Hit, tick uint64) {
	for _, hit := range hits {
		if !hit.Fatal {
			continue
		}
		enemy, err := w.store.Enemy(hit.TargetID)
		if err != nil {
			continue
		}
		w.awardKill(ctx, killer, enemy, tick)
	}
}

// awardKill grants experience, advances kill quests, and rolls the loot table
// into the killer's inventory. Runs exactly once per enemy death because the
// fatal transition is unique.
func (w *World) awardKill(ctx context.Context, killer *state.Character, enemy *state.Enemy, tick uint64) {
	if killer == nil {
		return
	}
	w.prog.GrantExperience(ctx, killer, enemy.ExperienceReward, tick)
	w.gate.RecordKill(ctx, killer, enemy.DefinitionID, tick)

	def, err := w.catalog.Enemy(enemy.DefinitionID)
	if err != nil || len(def.Loot) == 0 {
		return
	}
	var dropped []state.ItemStack
	for _, entry := range def.Loot {
		if w.rng.Float64() >= entry.Chance {
			continue
		}
		quantity := entry.Min
		if quantity < 1 {
			quantity = 1
		}
		if entry.Max > quantity {
			quantity += w.rng.Intn(entry.Max - quantity + 1)
		}
		killer.Inventory.Add(entry.ItemID, quantity)
		dropped = append(dropped, state.ItemStack{ItemID: entry.ItemID, Quantity: quantity})
	}
	if len(dropped) == 0 {
		return
	}
	killer.Version++
	killer.Dirty = true
	w.appendInventoryPatch(killer)
	w.journal.AppendEvent(journal.Event{Kind: journal.EventLoot, Tick: tick, Payload: journal.LootEvent{
		EnemyID:  enemy.ID,
		LooterID: killer.ID,
		Items:    dropped,
	}})
	for _, stack := range dropped {
		w.gate.RecordItem(ctx, killer, stack.ItemID, tick)
	}
}

func (w *World) integrateMovement(tick uint64, dt float64) {
	w.store.ForEachCharacter(func(c *state.Character) {
		if !c.Alive() || (c.IntentX == 0 && c.IntentY == 0) {
			return
		}
		speed := CharacterMoveSpeed * combat.SpeedMultiplier(&c.Actor)
		if speed <= 0 {
			return
		}
		x := clamp(c.X+c.IntentX*speed*dt, 0, w.cfg.Width)
		y := clamp(c.Y+c.IntentY*speed*dt, 0, w.cfg.Height)
		w.setCharacterPosition(c, x, y)
	})
}

func (w *World) runAutoAttacks(ctx context.Context, tick uint64) {
	w.store.ForEachCharacter(func(c *state.Character) {
		if !c.Alive() || c.TargetID == "" {
			return
		}
		outcome, failure := w.resolver.BasicAttack(ctx, c, c.TargetID, tick)
		if failure != nil {
			if failure.Kind == combat.FailureTargetInvalid {
				c.TargetID = ""
			}
			return
		}
		w.settleHits(ctx, c, outcome.Hits, tick)
	})
}

func (w *World) tickEffects(ctx context.Context, tick uint64) {
	w.store.ForEachCharacter(func(c *state.Character) {
		w.resolver.TickEffects(ctx, &c.Actor, tick)
	})
	w.store.ForEachEnemy(func(e *state.Enemy) {
		if w.resolver.TickEffects(ctx, &e.Actor, tick) {
			// Kill credit for a damage-over-time death goes to the top
			// threat contributor.
			if killerID, ok := e.Threat.Target(func(string) bool { return true }); ok {
				if killer, err := w.store.Character(killerID); err == nil {
					w.awardKill(ctx, killer, e, tick)
				}
			}
		}
	})
}

func (w *World) resolveDeaths(ctx context.Context, tick uint64) {
	w.store.ForEachCharacter(func(c *state.Character) {
		if c.Alive() {
			return
		}
		if _, scheduled := w.deadChars[c.ID]; !scheduled {
			w.deadChars[c.ID] = tick + w.cfg.RespawnDelayTicks
			c.TargetID = ""
			c.IntentX, c.IntentY = 0, 0
			combat.ClearEffects(&c.Actor)
			return
		}
		if tick >= w.deadChars[c.ID] {
			w.respawnCharacter(ctx, c, tick)
		}
	})

	var corpses []*state.Enemy
	w.store.ForEachEnemy(func(e *state.Enemy) {
		if e.Alive() {
			return
		}
		def, err := w.catalog.Enemy(e.DefinitionID)
		despawn := defaultDespawnTicks
		if err == nil && def.DespawnTicks > 0 {
			despawn = def.DespawnTicks
		}
		if tick >= e.DeadSinceTick+despawn {
			corpses = append(corpses, e)
		}
	})
	for _, e := range corpses {
		w.despawnEnemy(e, tick)
	}
}

func (w *World) respawnCharacter(ctx context.Context, c *state.Character, tick uint64) {
	delete(w.deadChars, c.ID)
	combat.ClearEffects(&c.Actor)
	c.TargetID = ""
	c.IntentX, c.IntentY = 0, 0
	w.setCharacterPosition(c, c.SpawnX, c.SpawnY)
	w.setCharacterHealth(c, c.MaxHealth)
	w.setCharacterMana(c, c.MaxMana)
	w.journal.AppendEvent(journal.Event{Kind: journal.EventRespawn, Tick: tick, Payload: journal.RespawnEvent{
		EntityID: c.ID,
		X:        c.X,
		Y:        c.Y,
	}})
	loglifecycle.Respawned(ctx, w.pub, tick, logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCharacter}, loglifecycle.Payload{Tick: tick})
}

func (w *World) despawnEnemy(e *state.Enemy, tick uint64) {
	if _, err := w.store.RemoveEnemy(e.ID); err != nil {
		return
	}
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchEnemyRemoved, EntityID: e.ID})
	for _, spawn := range w.spawns {
		if spawn.enemyID != e.ID {
			continue
		}
		def, err := w.catalog.Enemy(e.DefinitionID)
		respawn := defaultRespawnTicks
		if err == nil && def.RespawnTicks > 0 {
			respawn = def.RespawnTicks
		}
		spawn.enemyID = ""
		spawn.respawnAt = tick + respawn
		return
	}
}

func (w *World) spawnInitialEnemies() {
	ctx := context.Background()
	for _, spawn := range w.spawns {
		w.spawnAt(ctx, spawn, 0)
	}
}

func (w *World) respawnEnemies(ctx context.Context, tick uint64) {
	for _, spawn := range w.spawns {
		if spawn.enemyID == "" && tick >= spawn.respawnAt {
			w.spawnAt(ctx, spawn, tick)
		}
	}
}

func (w *World) spawnAt(ctx context.Context, spawn *enemySpawn, tick uint64) {
	def, err := w.catalog.Enemy(spawn.point.EnemyID)
	if err != nil {
		return
	}
	enemy := state.NewEnemy(state.NewEnemyID(def.ID), def, spawn.point.X, spawn.point.Y, tick, w.cfg.ThreatPolicy)
	if err := w.store.AddEnemy(enemy); err != nil {
		return
	}
	spawn.enemyID = enemy.ID
	w.journal.AppendPatch(journal.Patch{Kind: journal.PatchEnemySpawned, EntityID: enemy.ID, Payload: journal.EnemySpawnPayload{
		DefinitionID: def.ID,
		X:            enemy.X,
		Y:            enemy.Y,
		Health:       enemy.Health,
		MaxHealth:    enemy.MaxHealth,
	}})
	loglifecycle.EnemySpawned(ctx, w.pub, tick, logging.EntityRef{ID: enemy.ID, Kind: logging.EntityKindEnemy}, loglifecycle.Payload{
		Archetype: def.ID,
		Tick:      tick,
	})
}

// regenerate applies per-second regeneration on whole-second ticks. Health
// regen halts in combat; mana regen halves.
func (w *World) regenerate(tick uint64) {
	if tick == 0 || tick%uint64(w.cfg.TickRate) != 0 {
		return
	}
	w.store.ForEachCharacter(func(c *state.Character) {
		if !c.Alive() {
			return
		}
		def := state.DefinitionFor(c.Class)
		if c.InCombat(tick) {
			w.setCharacterMana(c, c.Mana+int(math.Floor(def.ManaRegen/2)))
			return
		}
		w.setCharacterHealth(c, c.Health+int(def.HealthRegen))
		w.setCharacterMana(c, c.Mana+int(def.ManaRegen))
	})
}

func (w *World) npcPlacement(npcID string) (NPCPlacement, bool) {
	for _, placement := range w.cfg.NPCs {
		if placement.NPCID == npcID {
			return placement, true
		}
	}
	return NPCPlacement{}, false
}

func (w *World) withinInteractRange(c *state.Character, placement NPCPlacement) bool {
	return math.Hypot(c.X-placement.X, c.Y-placement.Y) <= InteractRange
}

func questRejectKind(err error) string {
	switch {
	case errors.Is(err, quest.ErrRequirementNotMet):
		return "quest_requirement_not_met"
	case errors.Is(err, quest.ErrObjectivesIncomplete):
		return "quest_objectives_incomplete"
	default:
		return RejectQuestState
	}
}

func deriveFacing(dx, dy float64, current state.FacingDirection) state.FacingDirection {
	if dx == 0 && dy == 0 {
		return current
	}
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return state.FacingRight
		}
		return state.FacingLeft
	}
	if dy > 0 {
		return state.FacingDown
	}
	return state.FacingUp
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
