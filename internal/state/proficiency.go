package state

import "github.com/jbuehler23/eryndor-mmo/internal/catalog"

// Proficiency is one weapon- or armor-type skill track. XP stays strictly
// below the per-level threshold; overflow is converted to levels the moment
// it is granted.
type Proficiency struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// WeaponProficiencies keys every trained weapon kind to its track. Absent
// kinds are implicitly level 0.
type WeaponProficiencies map[catalog.WeaponKind]Proficiency

// ArmorProficiencies keys every trained armor kind to its track.
type ArmorProficiencies map[catalog.ArmorKind]Proficiency

func (p WeaponProficiencies) Level(kind catalog.WeaponKind) int {
	return p[kind].Level
}

func (p ArmorProficiencies) Level(kind catalog.ArmorKind) int {
	return p[kind].Level
}

func (p WeaponProficiencies) Clone() WeaponProficiencies {
	if len(p) == 0 {
		return WeaponProficiencies{}
	}
	cloned := make(WeaponProficiencies, len(p))
	for kind, track := range p {
		cloned[kind] = track
	}
	return cloned
}

func (p ArmorProficiencies) Clone() ArmorProficiencies {
	if len(p) == 0 {
		return ArmorProficiencies{}
	}
	cloned := make(ArmorProficiencies, len(p))
	for kind, track := range p {
		cloned[kind] = track
	}
	return cloned
}
