package state

import (
	"fmt"

	"github.com/google/uuid"
)

// NewEnemyID mints a unique instance id for a spawned enemy, prefixed with
// its definition id for log readability.
func NewEnemyID(definitionID string) string {
	return fmt.Sprintf("%s-%s", definitionID, uuid.NewString()[:8])
}

// NewCharacterID mints a unique character id.
func NewCharacterID() string {
	return "char-" + uuid.NewString()
}
