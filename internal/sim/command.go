package sim

import (
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandMove        CommandType = "Move"
	CommandAttack      CommandType = "Attack"
	CommandUseAbility  CommandType = "UseAbility"
	CommandUseItem     CommandType = "UseItem"
	CommandEquip       CommandType = "Equip"
	CommandAcceptQuest CommandType = "AcceptQuest"
	CommandTurnInQuest CommandType = "TurnInQuest"
	CommandInteractNPC CommandType = "InteractNPC"
	CommandBuyItem     CommandType = "BuyItem"
	CommandRespawn     CommandType = "Respawn"
	CommandSaveAck     CommandType = "SaveAck"
)

// Command represents an intent captured for processing on the next tick. At
// most one of the pointer fields is set, matching Type.
type Command struct {
	ID       string
	ActorID  string
	Type     CommandType
	IssuedAt time.Time

	Move    *MoveCommand
	Attack  *AttackCommand
	Ability *AbilityCommand
	Item    *ItemCommand
	Quest   *QuestCommand
	NPC     *NPCCommand
	Save    *SaveAckCommand
}

// MoveCommand carries the desired movement vector and facing.
type MoveCommand struct {
	DX     float64
	DY     float64
	Facing state.FacingDirection
}

// AttackCommand engages or clears the auto-attack target.
type AttackCommand struct {
	TargetID string
}

// AbilityCommand triggers one ability use.
type AbilityCommand struct {
	AbilityID string
	TargetID  string
}

// ItemCommand consumes, equips, or purchases one item.
type ItemCommand struct {
	ItemID string
	NPCID  string
}

// QuestCommand accepts or turns in a quest at its giver NPC.
type QuestCommand struct {
	QuestID string
	NPCID   string
}

// NPCCommand opens an interaction with a world NPC.
type NPCCommand struct {
	NPCID string
}

// SaveAckCommand confirms an async checkpoint finished. The character's dirty
// flag clears only when no mutation landed since the snapshot was taken.
type SaveAckCommand struct {
	Version uint64
}

// Rejection reports a command the world refused, with a machine-readable
// reason kind and a human-readable detail.
type Rejection struct {
	CommandID string `json:"commandId,omitempty"`
	ActorID   string `json:"actorId"`
	Type      string `json:"type"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
}
