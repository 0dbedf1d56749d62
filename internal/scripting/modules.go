package scripting

import (
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/combat"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
)

// RegisterModules registers the engine table into L:
//
//	engine.pool(attr, rank, misc)     -> dice pool size
//	engine.rank_bonus(rank)           -> rank bonus
//	engine.roll(n)                    -> faces table, successes
//	engine.successes(faces)           -> successes in a faces table
//	engine.mishap(required, successes) -> mishap severity ("" for none)
//	engine.log.debug/info/warn(msg)
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"pool":       m.luaPool,
		"rank_bonus": m.luaRankBonus,
		"roll":       m.luaRoll,
		"successes":  m.luaSuccesses,
		"mishap":     m.luaMishap,
	})
	log := L.NewTable()
	L.SetFuncs(log, map[string]lua.LGFunction{
		"debug": m.luaLog(zap.DebugLevel),
		"info":  m.luaLog(zap.InfoLevel),
		"warn":  m.luaLog(zap.WarnLevel),
	})
	L.SetField(engine, "log", log)
	L.SetGlobal("engine", engine)
}

func checkRank(L *lua.LState, n int) character.Rank {
	rank, ok := character.ParseRank(L.CheckString(n))
	if !ok {
		L.ArgError(n, "unknown rank")
	}
	return rank
}

func (m *Manager) luaPool(L *lua.LState) int {
	attr := L.CheckInt(1)
	rank := checkRank(L, 2)
	misc := L.OptInt(3, 0)
	L.Push(lua.LNumber(dice.Pool(attr, rank, misc)))
	return 1
}

func (m *Manager) luaRankBonus(L *lua.LState) int {
	L.Push(lua.LNumber(dice.RankBonus(checkRank(L, 1))))
	return 1
}

func (m *Manager) luaRoll(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 1 {
		L.ArgError(1, "pool must be at least 1")
	}
	res, err := dice.Resolve(m.runCtx, m.roller, m.bands, n)
	if err != nil {
		m.rollErr = err
		L.RaiseError("roll of %d dice failed: %v", n, err)
		return 0
	}
	m.rolls = append(m.rolls, res)
	faces := L.NewTable()
	for _, f := range res.Dice {
		faces.Append(lua.LNumber(f))
	}
	L.Push(faces)
	L.Push(lua.LNumber(res.Successes))
	return 2
}

func (m *Manager) luaSuccesses(L *lua.LState) int {
	tbl := L.CheckTable(1)
	faces := make([]int, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		n, ok := tbl.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.ArgError(1, "faces must be numbers")
		}
		faces = append(faces, int(n))
	}
	L.Push(lua.LNumber(m.bands.Count(faces)))
	return 1
}

func (m *Manager) luaMishap(L *lua.LState) int {
	L.Push(lua.LString(combat.MishapFor(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

func (m *Manager) luaLog(level zapcore.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		if ce := m.logger.Check(level, L.CheckString(1)); ce != nil {
			ce.Write(zap.String("source", "macro"))
		}
		return 0
	}
}

// toLua converts a Go value to a Lua value. Unsupported types become nil.
func toLua(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	case []int:
		tbl := L.NewTable()
		for _, e := range t {
			tbl.Append(lua.LNumber(e))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for _, e := range t {
			tbl.Append(toLua(L, e))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, toLua(L, t[k]))
		}
		return tbl
	}
	return lua.LNil
}

// fromLua converts a Lua value to Go. Integral numbers become int. A table
// whose keys are exactly 1..n becomes []any; any other table becomes
// map[string]any with stringified keys.
func fromLua(v lua.LValue) any {
	switch t := v.(type) {
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		f := float64(t)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case lua.LString:
		return string(t)
	case *lua.LTable:
		n := t.Len()
		count := 0
		t.ForEach(func(lua.LValue, lua.LValue) { count++ })
		if n > 0 && n == count {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(t.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any, count)
		t.ForEach(func(k, e lua.LValue) { out[k.String()] = fromLua(e) })
		return out
	}
	return nil
}
