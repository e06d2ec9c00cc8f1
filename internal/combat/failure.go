package combat

import "fmt"

// FailureKind is the machine-readable reason an ability use was refused.
// Clients branch on the kind; the reason string is for logs and humans.
type FailureKind string

const (
	FailureAbilityNotKnown      FailureKind = "ability_not_known"
	FailureOnCooldown           FailureKind = "on_cooldown"
	FailureInsufficientResource FailureKind = "insufficient_resource"
	FailureOutOfRange           FailureKind = "out_of_range"
	FailureTargetInvalid        FailureKind = "target_invalid"
)

// Failure is a validation rejection. A rejected use mutates nothing: no mana
// is spent, no cooldown starts, no damage lands.
type Failure struct {
	Kind   FailureKind
	Reason string
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

func notKnown(abilityID string) *Failure {
	return &Failure{Kind: FailureAbilityNotKnown, Reason: fmt.Sprintf("ability %q is not unlocked", abilityID)}
}

func onCooldown(readyTick, tick uint64) *Failure {
	return &Failure{Kind: FailureOnCooldown, Reason: fmt.Sprintf("ready in %d ticks", readyTick-tick)}
}

func insufficientMana(need, have int) *Failure {
	return &Failure{Kind: FailureInsufficientResource, Reason: fmt.Sprintf("costs %d mana, have %d", need, have)}
}

func outOfRange(distance, limit float64) *Failure {
	return &Failure{Kind: FailureOutOfRange, Reason: fmt.Sprintf("target at %.1f, max range %.1f", distance, limit)}
}

func targetInvalid(reason string) *Failure {
	return &Failure{Kind: FailureTargetInvalid, Reason: reason}
}
