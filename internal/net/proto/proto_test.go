package proto

import (
	"encoding/json"
	"testing"

	"github.com/jbuehler23/eryndor-mmo/internal/sim"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

func TestCommandTranslation(t *testing.T) {
	cases := []struct {
		name    string
		msg     ClientMessage
		verify  func(t *testing.T, cmd sim.Command)
		wantErr bool
	}{
		{
			name: "move carries intent and facing",
			msg:  ClientMessage{Type: ClientMove, Seq: "m-1", DX: 1, DY: -0.5, Facing: "left"},
			verify: func(t *testing.T, cmd sim.Command) {
				if cmd.Type != sim.CommandMove || cmd.Move == nil {
					t.Fatalf("expected move payload, got %+v", cmd)
				}
				if cmd.Move.DX != 1 || cmd.Move.DY != -0.5 {
					t.Fatalf("unexpected intent: %+v", cmd.Move)
				}
				if cmd.Move.Facing != state.FacingLeft {
					t.Fatalf("expected facing left, got %q", cmd.Move.Facing)
				}
				if cmd.ID != "m-1" {
					t.Fatalf("expected seq echoed as command id, got %q", cmd.ID)
				}
			},
		},
		{
			name: "attack targets an enemy",
			msg:  ClientMessage{Type: ClientAttack, TargetID: "enemy-1"},
			verify: func(t *testing.T, cmd sim.Command) {
				if cmd.Type != sim.CommandAttack || cmd.Attack == nil || cmd.Attack.TargetID != "enemy-1" {
					t.Fatalf("unexpected attack command: %+v", cmd)
				}
			},
		},
		{
			name: "ability carries ability and target",
			msg:  ClientMessage{Type: ClientUseAbility, AbilityID: "fireball", TargetID: "enemy-2"},
			verify: func(t *testing.T, cmd sim.Command) {
				if cmd.Type != sim.CommandUseAbility || cmd.Ability == nil {
					t.Fatalf("expected ability payload, got %+v", cmd)
				}
				if cmd.Ability.AbilityID != "fireball" || cmd.Ability.TargetID != "enemy-2" {
					t.Fatalf("unexpected ability command: %+v", cmd.Ability)
				}
			},
		},
		{
			name: "buy routes through the vendor",
			msg:  ClientMessage{Type: ClientBuyItem, ItemID: "health_potion", NPCID: "quartermaster"},
			verify: func(t *testing.T, cmd sim.Command) {
				if cmd.Type != sim.CommandBuyItem || cmd.Item == nil {
					t.Fatalf("expected item payload, got %+v", cmd)
				}
				if cmd.Item.ItemID != "health_potion" || cmd.Item.NPCID != "quartermaster" {
					t.Fatalf("unexpected buy command: %+v", cmd.Item)
				}
			},
		},
		{
			name: "quest turn-in names quest and giver",
			msg:  ClientMessage{Type: ClientTurnInQuest, QuestID: "slime_culling", NPCID: "trainer"},
			verify: func(t *testing.T, cmd sim.Command) {
				if cmd.Type != sim.CommandTurnInQuest || cmd.Quest == nil {
					t.Fatalf("expected quest payload, got %+v", cmd)
				}
				if cmd.Quest.QuestID != "slime_culling" || cmd.Quest.NPCID != "trainer" {
					t.Fatalf("unexpected quest command: %+v", cmd.Quest)
				}
			},
		},
		{
			name: "respawn has no payload",
			msg:  ClientMessage{Type: ClientRespawn},
			verify: func(t *testing.T, cmd sim.Command) {
				if cmd.Type != sim.CommandRespawn {
					t.Fatalf("expected respawn, got %+v", cmd)
				}
			},
		},
		{
			name:    "heartbeat is not a command",
			msg:     ClientMessage{Type: ClientHeartbeat, SentAt: 12345},
			wantErr: true,
		},
		{
			name:    "unknown type errors",
			msg:     ClientMessage{Type: "dance"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := tc.msg.Command("char-1")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.msg.Type)
				}
				return
			}
			if err != nil {
				t.Fatalf("translate %q: %v", tc.msg.Type, err)
			}
			if cmd.ActorID != "char-1" {
				t.Fatalf("expected actor id stamped, got %q", cmd.ActorID)
			}
			tc.verify(t, cmd)
		})
	}
}

func TestClientMessageDecodesWirePayload(t *testing.T) {
	raw := []byte(`{"type":"move","seq":"7","dx":0.6,"dy":0.8,"facing":"down"}`)

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != ClientMove || msg.Seq != "7" || msg.DX != 0.6 || msg.DY != 0.8 {
		t.Fatalf("unexpected decode: %+v", msg)
	}
}
