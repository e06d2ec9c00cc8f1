package progression

import "math"

// LevelThreshold returns the experience required to advance from the given
// level to the next: ceil(100 * level^1.5). Strictly increasing in level.
func LevelThreshold(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Ceil(100 * math.Pow(float64(level), 1.5)))
}

const (
	// ProficiencyXPPerLevel is the flat per-level threshold for weapon and
	// armor proficiency tracks.
	ProficiencyXPPerLevel = 100

	// DefaultProficiencyCap bounds proficiency levels unless configured
	// otherwise.
	DefaultProficiencyCap = 100

	// WeaponXPPerHit is granted to the wielded weapon's track per landed
	// hit.
	WeaponXPPerHit = 5

	// ArmorXPDamageDivisor converts damage taken into armor XP: 1 XP per
	// 10 damage, granted in full to every equipped piece's track
	// independently. Full-to-each is the chosen distribution policy and is
	// pinned by tests.
	ArmorXPDamageDivisor = 10
)

// ProficiencyBonus scales outgoing damage by weapon skill: 1% per level.
func ProficiencyBonus(level int) float64 {
	if level < 0 {
		level = 0
	}
	return 1 + 0.01*float64(level)
}
