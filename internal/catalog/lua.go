package catalog

import (
	"encoding/json"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// LoadLuaPack executes a Lua content pack in a sandboxed VM and returns the
// collected definitions. Packs are authored with curried constructors:
//
//	Ability "fireball" { name = "Fireball", effect = "direct_damage", ... }
//	Enemy "slime" { name = "Slime", maxHealth = 50, ... }
//
// The VM is discarded after loading; scripts only describe data, they hold no
// runtime hooks.
func LoadLuaPack(path string) (Pack, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)

	coll := &luaCollector{source: path}
	registerConstructors(L, coll)

	if err := L.DoFile(path); err != nil {
		return Pack{}, fmt.Errorf("catalog: executing %s: %w", path, err)
	}
	if coll.err != nil {
		return Pack{}, coll.err
	}
	return coll.pack, nil
}

func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Scripts describe static data; strip everything that reaches outside
	// the VM or breaks determinism.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "print"} {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("random", lua.LNil)
		mathTbl.RawSetString("randomseed", lua.LNil)
	}
}

type luaCollector struct {
	source string
	pack   Pack
	err    error
}

func (c *luaCollector) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// registerConstructors installs one curried global per definition kind. Each
// constructor takes the id, then a table whose fields mirror the JSON pack
// format; the table is round-tripped through JSON so both formats share one
// set of field names and validation.
func registerConstructors(L *lua.LState, coll *luaCollector) {
	L.SetGlobal("Ability", curried(L, func(id string, tbl *lua.LTable) {
		var def AbilityDefinition
		if err := decodeTable(coll.source, id, tbl, &def); err != nil {
			coll.fail(err)
			return
		}
		def.ID = id
		coll.pack.Abilities = append(coll.pack.Abilities, def)
	}))
	L.SetGlobal("Item", curried(L, func(id string, tbl *lua.LTable) {
		var def ItemDefinition
		if err := decodeTable(coll.source, id, tbl, &def); err != nil {
			coll.fail(err)
			return
		}
		def.ID = id
		coll.pack.Items = append(coll.pack.Items, def)
	}))
	L.SetGlobal("Enemy", curried(L, func(id string, tbl *lua.LTable) {
		var def EnemyDefinition
		if err := decodeTable(coll.source, id, tbl, &def); err != nil {
			coll.fail(err)
			return
		}
		def.ID = id
		coll.pack.Enemies = append(coll.pack.Enemies, def)
	}))
	L.SetGlobal("Quest", curried(L, func(id string, tbl *lua.LTable) {
		var def QuestDefinition
		if err := decodeTable(coll.source, id, tbl, &def); err != nil {
			coll.fail(err)
			return
		}
		def.ID = id
		coll.pack.Quests = append(coll.pack.Quests, def)
	}))
	L.SetGlobal("Passive", curried(L, func(id string, tbl *lua.LTable) {
		var def PassiveDefinition
		if err := decodeTable(coll.source, id, tbl, &def); err != nil {
			coll.fail(err)
			return
		}
		def.ID = id
		coll.pack.Passives = append(coll.pack.Passives, def)
	}))
	L.SetGlobal("NPC", curried(L, func(id string, tbl *lua.LTable) {
		var def NPCDefinition
		if err := decodeTable(coll.source, id, tbl, &def); err != nil {
			coll.fail(err)
			return
		}
		def.ID = id
		coll.pack.NPCs = append(coll.pack.NPCs, def)
	}))
}

func curried(L *lua.LState, collect func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			collect(id, tbl)
			return 0
		}))
		return 1
	})
}

func decodeTable(source, id string, tbl *lua.LTable, out any) error {
	value := luaToGo(tbl)
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("catalog: entry %q in %s: %w", id, source, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: entry %q in %s: %w", id, source, err)
	}
	return nil
}

// luaToGo converts a Lua value into the equivalent Go value. Tables with a
// positive sequence length become slices, everything else becomes a map.
func luaToGo(value lua.LValue) any {
	switch v := value.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if v.Len() > 0 {
			out := make([]any, 0, v.Len())
			for i := 1; i <= v.Len(); i++ {
				out = append(out, luaToGo(v.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		v.ForEach(func(key, val lua.LValue) {
			if name, ok := key.(lua.LString); ok {
				out[string(name)] = luaToGo(val)
			}
		})
		return out
	default:
		return nil
	}
}
