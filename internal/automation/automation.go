// Package automation drives echo parameters from a Lua script.
//
// A script defines a global function
//
//	function automate(t, p)
//	  return { feedback = 30 + 20 * math.sin(t), pingPong = t > 4 }
//	end
//
// t is the block start in seconds and p holds the current parameters keyed
// by parameter id. Keys in the returned table override parameters for the
// block; unknown keys are ignored. The extra key bpm sets the host tempo.
// Returning nil leaves everything unchanged.
package automation

import (
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-echo/dsp/effects/echo"
	"github.com/cwbudde/algo-echo/internal/paramstore"
)

const (
	// FuncName is the global the script must define.
	FuncName = "automate"
	// TempoKey sets the host tempo in BPM.
	TempoKey = "bpm"
)

var (
	ErrNoAutomate = errors.New("automation: script does not define function " + FuncName)
	ErrBadValue   = errors.New("automation: bad parameter value")
)

// Script is a loaded automation script. It is not safe for concurrent use.
type Script struct {
	name  string
	state *lua.LState
	fn    *lua.LFunction
}

// Result is the outcome of one evaluation.
type Result struct {
	Params   echo.Params
	Tempo    float64
	TempoSet bool
}

// Parse compiles src. name is used in error messages.
func Parse(src, name string) (*Script, error) {
	s := newScript(name)
	if err := s.state.DoString(src); err != nil {
		s.Close()
		return nil, fmt.Errorf("automation: %s: %w", name, err)
	}
	return s.bind()
}

// Load reads and compiles the script at path.
func Load(path string) (*Script, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	s := newScript(path)
	if err := s.state.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("automation: %s: %w", path, err)
	}
	return s.bind()
}

// newScript opens a state with the base, table, string and math libraries
// only, and without the base file loaders.
func newScript(name string) *Script {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	return &Script{name: name, state: L}
}

func (s *Script) bind() (*Script, error) {
	fn, ok := s.state.GetGlobal(FuncName).(*lua.LFunction)
	if !ok {
		s.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoAutomate, s.name)
	}
	s.fn = fn
	return s, nil
}

// Close releases the Lua state.
func (s *Script) Close() {
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

// Evaluate calls automate(t, p) and applies the returned overrides to p.
func (s *Script) Evaluate(t float64, p echo.Params) (Result, error) {
	res := Result{Params: p}

	arg := s.state.NewTable()
	for _, spec := range echo.ParamSpecs() {
		v, _ := p.Value(spec.ID)
		switch spec.ID {
		case echo.ParamSync, echo.ParamPingPong:
			arg.RawSetString(spec.ID, lua.LBool(v > 0.5))
		default:
			arg.RawSetString(spec.ID, lua.LNumber(v))
		}
	}

	err := s.state.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t), arg)
	if err != nil {
		return res, fmt.Errorf("automation: %s: %w", s.name, err)
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)

	if ret == lua.LNil {
		return res, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return res, fmt.Errorf("%w: %s returned %s, want table", ErrBadValue, FuncName, ret.Type())
	}

	var firstErr error
	tbl.ForEach(func(k, v lua.LValue) {
		if firstErr != nil {
			return
		}
		firstErr = res.set(k.String(), v)
	})
	if firstErr != nil {
		return Result{Params: p}, firstErr
	}

	return res, nil
}

func (r *Result) set(key string, v lua.LValue) error {
	switch key {
	case TempoKey:
		n, ok := v.(lua.LNumber)
		if !ok {
			return fmt.Errorf("%w: %s must be a number, got %s", ErrBadValue, key, v.Type())
		}
		r.Tempo, r.TempoSet = float64(n), true
		return nil

	case echo.ParamSync, echo.ParamPingPong:
		switch b := v.(type) {
		case lua.LBool:
			r.Params.Set(key, boolNumber(bool(b)))
			return nil
		case lua.LNumber:
			r.Params.Set(key, float64(b))
			return nil
		}
		return fmt.Errorf("%w: %s must be a boolean, got %s", ErrBadValue, key, v.Type())

	case echo.ParamSyncDivision:
		if label, ok := v.(lua.LString); ok {
			d, found := echo.ParseDivision(string(label))
			if !found {
				return fmt.Errorf("%w: unknown division %q", ErrBadValue, string(label))
			}
			r.Params.Division = d
			return nil
		}
	}

	if _, known := r.Params.Value(key); !known {
		return nil
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return fmt.Errorf("%w: %s must be a number, got %s", ErrBadValue, key, v.Type())
	}
	r.Params.Set(key, float64(n))
	return nil
}

// Apply evaluates the script against the store's current parameters and
// writes the result back.
func (s *Script) Apply(t float64, store *paramstore.Store) error {
	res, err := s.Evaluate(t, store.Snapshot())
	if err != nil {
		return err
	}
	store.Load(res.Params)
	if res.TempoSet {
		store.SetTempo(res.Tempo)
	}
	return nil
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
