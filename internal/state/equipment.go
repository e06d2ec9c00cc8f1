package state

import (
	"sort"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
)

// EquippedItem stores the item occupying a specific equipment slot.
type EquippedItem struct {
	Slot   catalog.EquipSlot `json:"slot"`
	ItemID string            `json:"itemId"`
}

// Equipment holds the deterministic equipped item list for an actor.
type Equipment struct {
	Slots []EquippedItem `json:"slots,omitempty"`
}

func NewEquipment() Equipment {
	return Equipment{}
}

func (e Equipment) Clone() Equipment {
	if len(e.Slots) == 0 {
		return Equipment{}
	}
	cloned := make([]EquippedItem, len(e.Slots))
	copy(cloned, e.Slots)
	return Equipment{Slots: cloned}
}

func (e *Equipment) Get(slot catalog.EquipSlot) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, entry := range e.Slots {
		if entry.Slot == slot {
			return entry.ItemID, true
		}
	}
	return "", false
}

// Set equips the item in the slot, returning the previously equipped item id
// if the slot was occupied.
func (e *Equipment) Set(slot catalog.EquipSlot, itemID string) (string, bool) {
	if e == nil || itemID == "" {
		return "", false
	}
	for i := range e.Slots {
		if e.Slots[i].Slot == slot {
			previous := e.Slots[i].ItemID
			e.Slots[i].ItemID = itemID
			return previous, true
		}
	}
	e.Slots = append(e.Slots, EquippedItem{Slot: slot, ItemID: itemID})
	sort.Slice(e.Slots, func(i, j int) bool {
		return e.Slots[i].Slot < e.Slots[j].Slot
	})
	return "", false
}

func (e *Equipment) Remove(slot catalog.EquipSlot) (string, bool) {
	if e == nil || len(e.Slots) == 0 {
		return "", false
	}
	for i := range e.Slots {
		if e.Slots[i].Slot != slot {
			continue
		}
		removed := e.Slots[i].ItemID
		e.Slots = append(e.Slots[:i], e.Slots[i+1:]...)
		return removed, true
	}
	return "", false
}

// ArmorPieces returns the equipped item ids occupying armor slots.
func (e *Equipment) ArmorPieces() []EquippedItem {
	if e == nil {
		return nil
	}
	var pieces []EquippedItem
	for _, entry := range e.Slots {
		if entry.Slot != catalog.SlotMainHand {
			pieces = append(pieces, entry)
		}
	}
	return pieces
}
