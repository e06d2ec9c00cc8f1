// Package hub owns client sessions and drives the simulation clock. All
// world access funnels through the hub mutex: the tick advance, joins, and
// disconnects are serialized, while command ingestion rides the loop's own
// concurrent-safe queue.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/net/proto"
	"github.com/jbuehler23/eryndor-mmo/internal/net/ws"
	"github.com/jbuehler23/eryndor-mmo/internal/persist"
	"github.com/jbuehler23/eryndor-mmo/internal/sim"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/internal/telemetry"
)

// Config tunes the hub's orchestration intervals.
type Config struct {
	TickRate                int
	CatchupMaxTicks         int
	CheckpointIntervalTicks uint64
	KeyframeIntervalTicks   uint64
}

// DefaultConfig matches a 10 Hz simulation with checkpoints every 30 s and
// keyframes every 5 s.
func DefaultConfig() Config {
	return Config{
		TickRate:                10,
		CatchupMaxTicks:         4,
		CheckpointIntervalTicks: 300,
		KeyframeIntervalTicks:   50,
	}
}

type remoteSession struct {
	session       *ws.Session
	joinedAt      time.Time
	lastHeartbeat time.Time
	rtt           time.Duration
}

// Hub wires sessions, the simulation loop, and the persistence boundary.
type Hub struct {
	cfg    Config
	loop   *sim.Loop
	world  *sim.World
	store  *persist.Store
	cp     *persist.Checkpointer
	logger telemetry.Logger

	mu       sync.Mutex
	sessions map[string]*remoteSession
}

// New builds a hub around the loop. store may be nil to run without
// persistence; the checkpointer is only started when it is present.
func New(cfg Config, loop *sim.Loop, store *persist.Store, logger telemetry.Logger) *Hub {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 10
	}
	h := &Hub{
		cfg:      cfg,
		loop:     loop,
		world:    loop.World(),
		store:    store,
		logger:   logger,
		sessions: make(map[string]*remoteSession),
	}
	if store != nil {
		// A completed save re-enters the simulation as a command so the
		// dirty flag clears on the tick goroutine, never concurrently.
		h.cp = persist.NewCheckpointer(store, nil, logger, func(result persist.SaveResult) {
			if result.Err != nil {
				return
			}
			h.loop.Enqueue(sim.Command{
				ActorID: result.CharacterID,
				Type:    sim.CommandSaveAck,
				Save:    &sim.SaveAckCommand{Version: result.Version},
			})
		})
	}
	return h
}

// Run drives the fixed-timestep clock until the context is cancelled. The
// world only ever advances here.
func (h *Hub) Run(ctx context.Context) {
	budget := time.Second / time.Duration(h.cfg.TickRate)
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	budgetSeconds := 1.0 / float64(h.cfg.TickRate)
	maxDt := budgetSeconds
	if h.cfg.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(h.cfg.CatchupMaxTicks)
	}
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
			}
			last = now
			h.tick(ctx, now, dt)
		}
	}
}

func (h *Hub) tick(ctx context.Context, now time.Time, dt float64) {
	h.mu.Lock()
	result := h.loop.Advance(ctx, now, dt)

	if h.cp != nil && h.cfg.CheckpointIntervalTicks > 0 && result.Tick%h.cfg.CheckpointIntervalTicks == 0 {
		h.checkpointLocked(result.Tick)
	}
	if h.cfg.KeyframeIntervalTicks > 0 && result.Tick%h.cfg.KeyframeIntervalTicks == 0 {
		h.world.Journal().RecordKeyframe(journal.Keyframe{
			Tick:     result.Tick,
			Recorded: now,
			Payload:  h.snapshotLocked(result.Tick),
		})
	}
	h.mu.Unlock()

	h.broadcast(result, now)
}

func (h *Hub) checkpointLocked(tick uint64) {
	var dirty []*state.Character
	h.world.Store().ForEachCharacter(func(c *state.Character) {
		if c.Dirty {
			dirty = append(dirty, c.Snapshot())
		}
	})
	if len(dirty) > 0 {
		h.cp.Submit(tick, dirty)
	}
}

func (h *Hub) snapshotLocked(tick uint64) proto.WorldSnapshot {
	cfg := h.world.Config()
	snapshot := proto.WorldSnapshot{
		Tick:   tick,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	h.world.Store().ForEachCharacter(func(c *state.Character) {
		snapshot.Characters = append(snapshot.Characters, c.Snapshot())
	})
	h.world.Store().ForEachEnemy(func(e *state.Enemy) {
		snapshot.Enemies = append(snapshot.Enemies, proto.EnemyState{
			ID:           e.ID,
			DefinitionID: e.DefinitionID,
			X:            e.X,
			Y:            e.Y,
			Health:       e.Health,
			MaxHealth:    e.MaxHealth,
			Enraged:      e.Enraged,
		})
	})
	for _, placement := range cfg.NPCs {
		snapshot.NPCs = append(snapshot.NPCs, proto.NPCState{
			ID: placement.NPCID,
			X:  placement.X,
			Y:  placement.Y,
		})
	}
	return snapshot
}

func (h *Hub) broadcast(result sim.LoopResult, now time.Time) {
	h.mu.Lock()
	recipients := make(map[string]*remoteSession, len(h.sessions))
	for id, sess := range h.sessions {
		recipients[id] = sess
	}
	h.mu.Unlock()
	if len(recipients) == 0 {
		return
	}

	base := proto.DeltaMessage{
		Ver:        proto.ProtocolVersion,
		Type:       proto.ServerDelta,
		Tick:       result.Tick,
		Patches:    result.StepResult.Delta.Patches,
		Events:     result.StepResult.Delta.Events,
		ServerTime: now.UnixMilli(),
	}
	shared, err := json.Marshal(base)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("[hub] marshal delta failed: %v", err)
		}
		return
	}

	for id, sess := range recipients {
		payload := shared
		if rejections := rejectionsFor(result.Rejections, id); len(rejections) > 0 {
			message := base
			message.Rejections = rejections
			data, err := json.Marshal(message)
			if err != nil {
				continue
			}
			payload = data
		}
		if err := sess.session.SendRaw(payload); err != nil {
			if h.logger != nil {
				h.logger.Printf("[hub] dropping session %s: %v", id, err)
			}
			h.Disconnect(id)
		}
	}
}

func rejectionsFor(all []sim.Rejection, actorID string) []sim.Rejection {
	var mine []sim.Rejection
	for _, rejection := range all {
		if rejection.ActorID == actorID {
			mine = append(mine, rejection)
		}
	}
	return mine
}

// Join admits a character into the world. A known character id is restored
// from the snapshot store; otherwise a fresh character is created. Returns
// the full snapshot the client rehydrates from.
func (h *Hub) Join(ctx context.Context, characterID, name string, class state.Class) (proto.JoinResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var c *state.Character
	if characterID != "" && h.store != nil {
		loaded, err := h.store.LoadCharacter(ctx, characterID)
		if err == nil {
			if err := h.world.RestoreCharacter(ctx, loaded); err != nil {
				return proto.JoinResponse{}, fmt.Errorf("hub: restore character: %w", err)
			}
			c = loaded
		}
	}
	if c == nil {
		id := characterID
		if id == "" {
			id = state.NewCharacterID()
		}
		created, err := h.world.SpawnCharacter(ctx, id, name, class)
		if err != nil {
			return proto.JoinResponse{}, fmt.Errorf("hub: spawn character: %w", err)
		}
		c = created
	}

	return proto.JoinResponse{
		Ver:              proto.ProtocolVersion,
		CharacterID:      c.ID,
		TickRate:         h.cfg.TickRate,
		KeyframeInterval: int(h.cfg.KeyframeIntervalTicks),
		Snapshot:         h.snapshotLocked(h.world.CurrentTick()),
	}, nil
}

// Subscribe attaches a websocket session to a joined character and returns
// the keyframe to send first. Fails when the character is not in the world.
func (h *Hub) Subscribe(characterID string, session *ws.Session) (proto.KeyframeMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.world.Store().Character(characterID); err != nil {
		return proto.KeyframeMessage{}, false
	}
	if previous, ok := h.sessions[characterID]; ok {
		previous.session.Close(websocket.ClosePolicyViolation, "superseded by a new connection")
	}
	now := time.Now()
	h.sessions[characterID] = &remoteSession{
		session:       session,
		joinedAt:      now,
		lastHeartbeat: now,
	}
	tick := h.world.CurrentTick()
	return proto.KeyframeMessage{
		Ver:      proto.ProtocolVersion,
		Type:     proto.ServerKeyframe,
		Tick:     tick,
		Snapshot: h.snapshotLocked(tick),
	}, true
}

// Disconnect detaches the session and removes the character from the world,
// persisting its final snapshot.
func (h *Hub) Disconnect(characterID string) {
	h.mu.Lock()
	sess, ok := h.sessions[characterID]
	if ok {
		delete(h.sessions, characterID)
	}
	snapshot, err := h.world.RemoveCharacter(context.Background(), characterID)
	tick := h.world.CurrentTick()
	h.mu.Unlock()

	if sess != nil {
		sess.session.Close(websocket.CloseNormalClosure, "disconnected")
	}
	if err == nil && snapshot != nil && h.cp != nil {
		h.cp.Submit(tick, []*state.Character{snapshot})
	}
}

// HandleMessage processes one client frame: heartbeats are answered
// directly, everything else becomes a queued simulation command.
func (h *Hub) HandleMessage(characterID string, payload []byte) {
	var msg proto.ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		if h.logger != nil {
			h.logger.Printf("[hub] discarding malformed message from %s: %v", characterID, err)
		}
		return
	}

	if msg.Type == proto.ClientHeartbeat {
		h.handleHeartbeat(characterID, msg.SentAt)
		return
	}

	cmd, err := msg.Command(characterID)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("[hub] unknown message type from %s: %v", characterID, err)
		}
		return
	}
	cmd.IssuedAt = time.Now()
	h.loop.Enqueue(cmd)
}

func (h *Hub) handleHeartbeat(characterID string, clientSent int64) {
	now := time.Now()
	var rtt time.Duration
	h.mu.Lock()
	sess, ok := h.sessions[characterID]
	if ok {
		sess.lastHeartbeat = now
		if clientSent > 0 {
			sess.rtt = now.Sub(time.UnixMilli(clientSent))
			if sess.rtt < 0 {
				sess.rtt = 0
			}
		}
		rtt = sess.rtt
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	ack := proto.HeartbeatMessage{
		Type:       proto.ServerHeartbeat,
		ServerTime: now.UnixMilli(),
		ClientTime: clientSent,
		RTTMillis:  rtt.Milliseconds(),
	}
	if err := sess.session.Send(ack); err != nil {
		h.Disconnect(characterID)
	}
}

// SessionDiagnostics is one connected session's health view.
type SessionDiagnostics struct {
	CharacterID   string `json:"id"`
	JoinedAt      int64  `json:"joinedAt"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

// Diagnostics reports hub and journal health for the HTTP surface.
type Diagnostics struct {
	Tick       uint64               `json:"tick"`
	Characters int                  `json:"characters"`
	Enemies    int                  `json:"enemies"`
	Pending    int                  `json:"pendingCommands"`
	Journal    journal.Stats        `json:"journal"`
	Sessions   []SessionDiagnostics `json:"sessions"`
}

// DiagnosticsSnapshot captures current counters for /diagnostics.
func (h *Hub) DiagnosticsSnapshot() Diagnostics {
	h.mu.Lock()
	defer h.mu.Unlock()

	diag := Diagnostics{
		Tick:       h.world.CurrentTick(),
		Characters: h.world.Store().CharacterCount(),
		Enemies:    h.world.Store().EnemyCount(),
		Pending:    h.loop.Pending(),
		Journal:    h.world.Journal().Stats(),
	}
	for id, sess := range h.sessions {
		diag.Sessions = append(diag.Sessions, SessionDiagnostics{
			CharacterID:   id,
			JoinedAt:      sess.joinedAt.UnixMilli(),
			LastHeartbeat: sess.lastHeartbeat.UnixMilli(),
			RTTMillis:     sess.rtt.Milliseconds(),
		})
	}
	return diag
}

// shutdown flushes a final checkpoint and closes every session.
func (h *Hub) shutdown() {
	h.mu.Lock()
	if h.cp != nil {
		h.checkpointLocked(h.world.CurrentTick())
	}
	sessions := h.sessions
	h.sessions = make(map[string]*remoteSession)
	h.mu.Unlock()

	for _, sess := range sessions {
		sess.session.Close(websocket.CloseGoingAway, "server shutting down")
	}
	if h.cp != nil {
		h.cp.Close()
	}
}
