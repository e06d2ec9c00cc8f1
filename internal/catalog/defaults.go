package catalog

// DefaultPack returns the built-in content shipped with the server. External
// packs loaded from the content directory merge on top of it.
func DefaultPack() Pack {
	return Pack{
		Abilities: []AbilityDefinition{
			{
				ID:            "quick_strike",
				Name:          "Quick Strike",
				Effect:        EffectDirectDamage,
				Weapon:        WeaponDagger,
				Multiplier:    1.2,
				ManaCost:      5,
				CooldownTicks: 20,
				Range:         30,
			},
			{
				ID:            "heavy_slash",
				Name:          "Heavy Slash",
				Effect:        EffectDirectDamage,
				Weapon:        WeaponSword,
				Multiplier:    1.8,
				ManaCost:      10,
				CooldownTicks: 50,
				Range:         30,
				Requirement:   UnlockRequirement{Weapon: WeaponSword, WeaponProficiency: 5},
			},
			{
				ID:            "fireball",
				Name:          "Fireball",
				Effect:        EffectDirectDamage,
				Weapon:        WeaponStaff,
				Multiplier:    2.0,
				ManaCost:      20,
				CooldownTicks: 60,
				Range:         150,
			},
			{
				ID:            "poison_blade",
				Name:          "Poison Blade",
				Effect:        EffectDamageOverTime,
				Weapon:        WeaponDagger,
				ManaCost:      15,
				CooldownTicks: 80,
				Range:         30,
				TickDamage:    4,
				IntervalTicks: 10,
				DurationTicks: 60,
				Requirement:   UnlockRequirement{Weapon: WeaponDagger, WeaponProficiency: 10},
			},
			{
				ID:            "whirlwind",
				Name:          "Whirlwind",
				Effect:        EffectAreaOfEffect,
				Weapon:        WeaponAxe,
				Multiplier:    1.4,
				ManaCost:      25,
				CooldownTicks: 100,
				Radius:        60,
				Requirement:   UnlockRequirement{Level: 5},
			},
			{
				ID:            "minor_heal",
				Name:          "Minor Heal",
				Effect:        EffectHeal,
				ManaCost:      15,
				CooldownTicks: 40,
				Range:         80,
				Heal:          25,
			},
			{
				ID:            "battle_shout",
				Name:          "Battle Shout",
				Effect:        EffectBuff,
				ManaCost:      10,
				CooldownTicks: 200,
				BuffStat:      "attack",
				BuffAmount:    5,
				DurationTicks: 150,
				Requirement:   UnlockRequirement{Level: 3},
			},
			{
				ID:            "crippling_blow",
				Name:          "Crippling Blow",
				Effect:        EffectDebuff,
				Weapon:        WeaponMace,
				ManaCost:      12,
				CooldownTicks: 120,
				Range:         30,
				Debuff:        DebuffSlow,
				BuffStat:      "speed",
				BuffAmount:    -0.5,
				DurationTicks: 50,
			},
			{
				ID:            "shadowstep",
				Name:          "Shadowstep",
				Effect:        EffectMobility,
				ManaCost:      20,
				CooldownTicks: 150,
				Range:         100,
				Requirement:   UnlockRequirement{QuestID: "choose_your_path"},
			},
		},
		Items: []ItemDefinition{
			{ID: "gold", Name: "Gold Coin", Class: ItemClassCurrency, Stackable: true},
			{ID: "health_potion", Name: "Health Potion", Class: ItemClassConsumable, Heal: 30, GoldCost: 10, Stackable: true},
			{ID: "iron_sword", Name: "Iron Sword", Class: ItemClassWeapon, Slot: SlotMainHand, Weapon: WeaponSword, AttackBonus: 4, GoldCost: 50},
			{ID: "rusty_dagger", Name: "Rusty Dagger", Class: ItemClassWeapon, Slot: SlotMainHand, Weapon: WeaponDagger, AttackBonus: 2, GoldCost: 20},
			{ID: "apprentice_staff", Name: "Apprentice Staff", Class: ItemClassWeapon, Slot: SlotMainHand, Weapon: WeaponStaff, AttackBonus: 3, GoldCost: 40},
			{ID: "oak_wand", Name: "Oak Wand", Class: ItemClassWeapon, Slot: SlotMainHand, Weapon: WeaponWand, AttackBonus: 2, GoldCost: 35},
			{ID: "hunting_bow", Name: "Hunting Bow", Class: ItemClassWeapon, Slot: SlotMainHand, Weapon: WeaponBow, AttackBonus: 3, GoldCost: 45},
			{ID: "cloth_robe", Name: "Cloth Robe", Class: ItemClassArmor, Slot: SlotChest, Armor: ArmorCloth, DefenseBonus: 2, GoldCost: 15},
			{ID: "cloth_hood", Name: "Cloth Hood", Class: ItemClassArmor, Slot: SlotHead, Armor: ArmorCloth, DefenseBonus: 1, GoldCost: 10},
			{ID: "leather_tunic", Name: "Leather Tunic", Class: ItemClassArmor, Slot: SlotChest, Armor: ArmorLeather, DefenseBonus: 4, GoldCost: 35},
			{ID: "leather_boots", Name: "Leather Boots", Class: ItemClassArmor, Slot: SlotFeet, Armor: ArmorLeather, DefenseBonus: 2, GoldCost: 20},
			{ID: "chain_leggings", Name: "Chain Leggings", Class: ItemClassArmor, Slot: SlotLegs, Armor: ArmorChain, DefenseBonus: 5, GoldCost: 60},
			{ID: "plate_cuirass", Name: "Plate Cuirass", Class: ItemClassArmor, Slot: SlotChest, Armor: ArmorPlate, DefenseBonus: 8, GoldCost: 120},
			{ID: "slime_residue", Name: "Slime Residue", Class: ItemClassQuestItem, Stackable: true},
			{ID: "wolf_pelt", Name: "Wolf Pelt", Class: ItemClassQuestItem, Stackable: true},
		},
		Enemies: []EnemyDefinition{
			{
				ID: "slime", Name: "Slime",
				MaxHealth: 50, Attack: 5, Defense: 2,
				ExperienceReward: 50,
				AggroRadius:      150, LeashRadius: 300, MeleeRange: 30,
				AttackTicks:  20,
				RespawnTicks: 300, DespawnTicks: 100,
				Loot: []LootEntry{
					{ItemID: "gold", Chance: 0.8, Min: 1, Max: 5},
					{ItemID: "slime_residue", Chance: 0.5, Min: 1, Max: 1},
				},
			},
			{
				ID: "goblin", Name: "Goblin Scavenger",
				MaxHealth: 80, Attack: 8, Defense: 4, CritChance: 0.05,
				ExperienceReward: 90,
				AggroRadius:      150, LeashRadius: 300, MeleeRange: 30,
				AttackTicks:  16,
				RespawnTicks: 450, DespawnTicks: 100,
				Loot: []LootEntry{
					{ItemID: "gold", Chance: 0.9, Min: 2, Max: 10},
					{ItemID: "rusty_dagger", Chance: 0.1, Min: 1, Max: 1},
				},
			},
			{
				ID: "wolf", Name: "Gray Wolf",
				MaxHealth: 70, Attack: 10, Defense: 3, CritChance: 0.1,
				ExperienceReward: 80,
				AggroRadius:      200, LeashRadius: 350, MeleeRange: 30,
				AttackTicks:      14,
				EnrageTicks:      1200, EnrageMultiplier: 1.5,
				RespawnTicks: 450, DespawnTicks: 100,
				Loot: []LootEntry{
					{ItemID: "wolf_pelt", Chance: 0.7, Min: 1, Max: 2},
				},
			},
		},
		Quests: []QuestDefinition{
			{
				ID:          "choose_your_path",
				Name:        "Choose Your Path",
				Description: "Speak with the combat trainer and commit to a fighting style.",
				GiverNPC:    "trainer",
				Objectives: []ObjectiveDefinition{
					{Kind: ObjectiveTalkToNPC, Target: "trainer", Count: 1},
				},
				RewardXP:      25,
				RewardAbility: "shadowstep",
			},
			{
				ID:          "slime_culling",
				Name:        "Slime Culling",
				Description: "Thin the slimes gathering by the village well.",
				GiverNPC:    "trainer",
				Objectives: []ObjectiveDefinition{
					{Kind: ObjectiveKillEnemy, Target: "slime", Count: 5},
				},
				RewardXP:    120,
				RewardItems: []ItemGrant{{ItemID: "health_potion", Quantity: 2}},
			},
			{
				ID:          "blade_discipline",
				Name:        "Blade Discipline",
				Description: "Prove your sword arm to unlock advanced technique.",
				GiverNPC:    "trainer",
				Requirement: UnlockRequirement{Weapon: WeaponSword, WeaponProficiency: 5},
				Objectives: []ObjectiveDefinition{
					{Kind: ObjectiveUseAbility, Target: "heavy_slash", Count: 10},
					{Kind: ObjectiveReachProficiency, Weapon: WeaponSword, Level: 8},
				},
				RewardXP:      200,
				RewardAbility: "whirlwind",
			},
			{
				ID:          "pelts_for_the_quartermaster",
				Name:        "Pelts for the Quartermaster",
				Description: "The quartermaster pays for wolf pelts.",
				GiverNPC:    "quartermaster",
				Requirement: UnlockRequirement{Level: 3},
				Objectives: []ObjectiveDefinition{
					{Kind: ObjectiveObtainItem, Target: "wolf_pelt", Count: 4},
				},
				RewardXP:    150,
				RewardItems: []ItemGrant{{ItemID: "gold", Quantity: 40}},
			},
		},
		Passives: []PassiveDefinition{
			{ID: "cloth_attunement", Name: "Cloth Attunement", Armor: ArmorCloth, RequiredLevel: 5, Modifier: "mana_regen", Amount: 1},
			{ID: "leather_conditioning", Name: "Leather Conditioning", Armor: ArmorLeather, RequiredLevel: 5, Modifier: "speed", Amount: 0.05},
			{ID: "chain_discipline", Name: "Chain Discipline", Armor: ArmorChain, RequiredLevel: 5, Modifier: "defense", Amount: 3},
			{ID: "plate_mastery", Name: "Plate Mastery", Armor: ArmorPlate, RequiredLevel: 10, Modifier: "defense", Amount: 6},
			{ID: "second_skin", Name: "Second Skin", Armor: ArmorLeather, RequiredLevel: 10, Modifier: "health", Amount: 20},
		},
		NPCs: []NPCDefinition{
			{
				ID: "trainer", Name: "Combat Trainer Aldric",
				Quests: []string{"choose_your_path", "slime_culling", "blade_discipline"},
				Wares:  []string{"iron_sword", "rusty_dagger", "apprentice_staff", "oak_wand", "hunting_bow"},
			},
			{
				ID: "quartermaster", Name: "Quartermaster Wren",
				Quests: []string{"pelts_for_the_quartermaster"},
				Wares:  []string{"health_potion", "cloth_robe", "cloth_hood", "leather_tunic", "leather_boots", "chain_leggings", "plate_cuirass"},
			},
		},
	}
}
