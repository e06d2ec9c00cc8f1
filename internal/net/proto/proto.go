// Package proto defines the JSON wire messages exchanged with game clients.
// Client intents arrive as ClientMessage and are translated into simulation
// commands; server frames carry either a tick delta or a full keyframe.
package proto

import (
	"fmt"

	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/sim"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

// ProtocolVersion is bumped on breaking wire changes.
const ProtocolVersion = 1

// Client → server message types.
const (
	ClientMove        = "move"
	ClientAttack      = "attack"
	ClientUseAbility  = "use_ability"
	ClientUseItem     = "use_item"
	ClientEquip       = "equip"
	ClientBuyItem     = "buy_item"
	ClientAcceptQuest = "accept_quest"
	ClientTurnInQuest = "turn_in_quest"
	ClientInteractNPC = "interact_npc"
	ClientRespawn     = "respawn"
	ClientHeartbeat   = "heartbeat"
)

// Server → client frame types.
const (
	ServerDelta     = "delta"
	ServerKeyframe  = "keyframe"
	ServerHeartbeat = "heartbeat"
	ServerError     = "error"
)

// ClientMessage is the single envelope for everything a client sends. Only
// the fields matching Type are read.
type ClientMessage struct {
	Type string `json:"type"`
	Seq  string `json:"seq,omitempty"`

	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Facing string  `json:"facing,omitempty"`

	TargetID  string `json:"targetId,omitempty"`
	AbilityID string `json:"abilityId,omitempty"`
	ItemID    string `json:"itemId,omitempty"`
	NPCID     string `json:"npcId,omitempty"`
	QuestID   string `json:"questId,omitempty"`

	SentAt int64 `json:"sentAt,omitempty"`
}

// Command translates the message into a simulation command for the actor.
// Heartbeats are not commands and return an error.
func (m ClientMessage) Command(actorID string) (sim.Command, error) {
	cmd := sim.Command{ID: m.Seq, ActorID: actorID}
	switch m.Type {
	case ClientMove:
		facing, _ := state.ParseFacing(m.Facing)
		cmd.Type = sim.CommandMove
		cmd.Move = &sim.MoveCommand{DX: m.DX, DY: m.DY, Facing: facing}
	case ClientAttack:
		cmd.Type = sim.CommandAttack
		cmd.Attack = &sim.AttackCommand{TargetID: m.TargetID}
	case ClientUseAbility:
		cmd.Type = sim.CommandUseAbility
		cmd.Ability = &sim.AbilityCommand{AbilityID: m.AbilityID, TargetID: m.TargetID}
	case ClientUseItem:
		cmd.Type = sim.CommandUseItem
		cmd.Item = &sim.ItemCommand{ItemID: m.ItemID}
	case ClientEquip:
		cmd.Type = sim.CommandEquip
		cmd.Item = &sim.ItemCommand{ItemID: m.ItemID}
	case ClientBuyItem:
		cmd.Type = sim.CommandBuyItem
		cmd.Item = &sim.ItemCommand{ItemID: m.ItemID, NPCID: m.NPCID}
	case ClientAcceptQuest:
		cmd.Type = sim.CommandAcceptQuest
		cmd.Quest = &sim.QuestCommand{QuestID: m.QuestID, NPCID: m.NPCID}
	case ClientTurnInQuest:
		cmd.Type = sim.CommandTurnInQuest
		cmd.Quest = &sim.QuestCommand{QuestID: m.QuestID, NPCID: m.NPCID}
	case ClientInteractNPC:
		cmd.Type = sim.CommandInteractNPC
		cmd.NPC = &sim.NPCCommand{NPCID: m.NPCID}
	case ClientRespawn:
		cmd.Type = sim.CommandRespawn
	default:
		return sim.Command{}, fmt.Errorf("proto: message type %q is not a command", m.Type)
	}
	return cmd, nil
}

// EnemyState is the client-facing view of one enemy.
type EnemyState struct {
	ID           string  `json:"id"`
	DefinitionID string  `json:"definitionId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Health       int     `json:"health"`
	MaxHealth    int     `json:"maxHealth"`
	Enraged      bool    `json:"enraged,omitempty"`
}

// NPCState is the client-facing view of one placed NPC.
type NPCState struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// WorldSnapshot is the full rehydration payload for joins, keyframes, and
// resyncs.
type WorldSnapshot struct {
	Tick       uint64             `json:"tick"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Characters []*state.Character `json:"characters"`
	Enemies    []EnemyState       `json:"enemies"`
	NPCs       []NPCState         `json:"npcs"`
}

// JoinResponse answers the HTTP join with identity and a full snapshot.
type JoinResponse struct {
	Ver              int           `json:"ver"`
	CharacterID      string        `json:"id"`
	TickRate         int           `json:"tickRate"`
	KeyframeInterval int           `json:"keyframeInterval,omitempty"`
	Snapshot         WorldSnapshot `json:"snapshot"`
}

// DeltaMessage carries one tick's replication stream. Rejections are
// filtered to the receiving session's actor.
type DeltaMessage struct {
	Ver        int             `json:"ver"`
	Type       string          `json:"type"`
	Tick       uint64          `json:"t"`
	Patches    []journal.Patch `json:"patches"`
	Events     []journal.Event `json:"events,omitempty"`
	Rejections []sim.Rejection `json:"rejections,omitempty"`
	ServerTime int64           `json:"serverTime"`
}

// KeyframeMessage carries a full snapshot for mid-session resync.
type KeyframeMessage struct {
	Ver      int           `json:"ver"`
	Type     string        `json:"type"`
	Tick     uint64        `json:"t"`
	Snapshot WorldSnapshot `json:"snapshot"`
}

// HeartbeatMessage acknowledges a client heartbeat with timing info.
type HeartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rttMillis"`
}

// ErrorMessage reports a session-level failure before closing.
type ErrorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
