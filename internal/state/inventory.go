package state

import "sort"

// ItemStack is a quantity of one item kind.
type ItemStack struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Inventory holds an actor's carried items in deterministic order.
type Inventory struct {
	Slots []ItemStack `json:"slots,omitempty"`
}

func NewInventory() Inventory {
	return Inventory{}
}

func (inv Inventory) Clone() Inventory {
	if len(inv.Slots) == 0 {
		return Inventory{}
	}
	cloned := make([]ItemStack, len(inv.Slots))
	copy(cloned, inv.Slots)
	return Inventory{Slots: cloned}
}

// Count returns the total quantity held of one item kind.
func (inv *Inventory) Count(itemID string) int {
	if inv == nil {
		return 0
	}
	total := 0
	for _, stack := range inv.Slots {
		if stack.ItemID == itemID {
			total += stack.Quantity
		}
	}
	return total
}

// Add merges quantity into the existing stack for the item, creating one if
// absent. Non-positive quantities are ignored.
func (inv *Inventory) Add(itemID string, quantity int) {
	if inv == nil || itemID == "" || quantity <= 0 {
		return
	}
	for i := range inv.Slots {
		if inv.Slots[i].ItemID == itemID {
			inv.Slots[i].Quantity += quantity
			return
		}
	}
	inv.Slots = append(inv.Slots, ItemStack{ItemID: itemID, Quantity: quantity})
	sort.Slice(inv.Slots, func(i, j int) bool {
		return inv.Slots[i].ItemID < inv.Slots[j].ItemID
	})
}

// Remove deducts quantity of the item, deleting the stack when it empties.
// Returns false (and mutates nothing) when the inventory holds too few.
func (inv *Inventory) Remove(itemID string, quantity int) bool {
	if inv == nil || quantity <= 0 {
		return false
	}
	if inv.Count(itemID) < quantity {
		return false
	}
	for i := range inv.Slots {
		if inv.Slots[i].ItemID != itemID {
			continue
		}
		take := quantity
		if take > inv.Slots[i].Quantity {
			take = inv.Slots[i].Quantity
		}
		inv.Slots[i].Quantity -= take
		quantity -= take
		if quantity == 0 {
			break
		}
	}
	compacted := inv.Slots[:0]
	for _, stack := range inv.Slots {
		if stack.Quantity > 0 {
			compacted = append(compacted, stack)
		}
	}
	inv.Slots = compacted
	return true
}
