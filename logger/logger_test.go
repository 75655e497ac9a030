package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/handler"
)

// recorder collects the contexts it receives
type recorder struct {
	*handler.FuncHandler
	mu   sync.Mutex
	ctxs []*core.Context
}

func newRecorder(name string) *recorder {
	r := &recorder{}
	r.FuncHandler = handler.NewFuncHandler(func(ctx *core.Context) error {
		r.mu.Lock()
		r.ctxs = append(r.ctxs, ctx)
		r.mu.Unlock()
		return nil
	})
	r.SetName(name)
	return r
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ctxs))
	for i, ctx := range r.ctxs {
		out[i] = ctx.Render()
	}
	return out
}

func (r *recorder) last() *core.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ctxs) == 0 {
		return nil
	}
	return r.ctxs[len(r.ctxs)-1]
}

func newTestSystem(opts ...Option) (*System, *bytes.Buffer) {
	var errOut bytes.Buffer
	return NewSystem(append([]Option{WithErrorOutput(&errOut)}, opts...)...), &errOut
}

func TestGetLogger_SingletonPerName(t *testing.T) {
	sys, _ := newTestSystem()

	assert.Same(t, sys.GetLogger("a.b"), sys.GetLogger("a.b"))
	assert.Same(t, sys.Root(), sys.GetLogger(""))
	assert.Same(t, sys.Root(), sys.GetLogger("root"))
	assert.Equal(t, "root", sys.Root().Name())
}

func TestGetLogger_ConcurrentCreate(t *testing.T) {
	sys, _ := newTestSystem()

	var wg sync.WaitGroup
	got := make([]*Logger, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = sys.GetLogger("svc.worker")
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestGetLogger_DoesNotCreateAncestors(t *testing.T) {
	sys, _ := newTestSystem()
	c := sys.GetLogger("a.b.c")

	assert.Equal(t, []string{"a.b.c"}, sys.Loggers())
	assert.Same(t, sys.Root(), c.Parent())

	a := sys.GetLogger("a")
	assert.Same(t, a, c.Parent(), "parent resolves to the nearest registered prefix")
	assert.Same(t, sys.Root(), a.Parent())
	assert.Nil(t, sys.Root().Parent())
}

func TestLevelInheritance(t *testing.T) {
	sys, _ := newTestSystem()
	a := sys.GetLogger("a")
	ab := sys.GetLogger("a.b")
	abc := sys.GetLogger("a.b.c")

	require.NoError(t, a.SetLevel(2))
	assert.Equal(t, 2, abc.EffectiveLevel())
	assert.Equal(t, 2, ab.EffectiveLevel())

	require.NoError(t, ab.SetLevel(4))
	assert.Equal(t, 4, abc.EffectiveLevel())
	assert.Equal(t, 2, a.EffectiveLevel())
	assert.Equal(t, "ERROR", abc.EffectiveLevelName())

	ab.ClearLevel()
	assert.Equal(t, 2, abc.EffectiveLevel())
}

func TestLevelInheritance_SkipsUnregisteredAncestors(t *testing.T) {
	sys, _ := newTestSystem()
	require.NoError(t, sys.GetLogger("a").SetLevel("WARN"))

	assert.Equal(t, WarnLevel, sys.GetLogger("a.b.c").EffectiveLevel())
}

func TestLevelInheritance_DefaultsToLowest(t *testing.T) {
	sys, _ := newTestSystem()
	assert.Equal(t, 0, sys.GetLogger("x.y").EffectiveLevel())

	require.NoError(t, sys.Root().SetLevel("info"))
	assert.Equal(t, InfoLevel, sys.GetLogger("x.y").EffectiveLevel())
}

func TestSetLevel_Unknown(t *testing.T) {
	sys, _ := newTestSystem()
	l := sys.GetLogger("a")

	assert.ErrorIs(t, l.SetLevel("LOUD"), core.ErrUnknownLevel)
	assert.ErrorIs(t, l.SetLevel(17), core.ErrUnknownLevel)
	assert.Equal(t, core.Unset, l.Level())

	require.NoError(t, l.SetLevel(3))
	require.NoError(t, l.SetLevel(core.Unset))
	assert.Equal(t, core.Unset, l.Level())
}

func TestPropagationCutoff(t *testing.T) {
	sys, _ := newTestSystem()
	h0, h1, h2 := newRecorder("h0"), newRecorder("h1"), newRecorder("h2")

	sys.Root().AddHandler(h0)
	a := sys.GetLogger("a").AddHandler(h1)
	ab := sys.GetLogger("a.b").AddHandler(h2).SetPropagate(false)

	assert.Equal(t, []handler.Handler{h2}, ab.EffectiveHandlers())
	assert.Equal(t, []handler.Handler{h1, h0}, a.EffectiveHandlers())
}

func TestPropagationCutoff_KeepsLevel(t *testing.T) {
	sys, _ := newTestSystem()
	require.NoError(t, sys.GetLogger("a").SetLevel("ERROR"))
	ab := sys.GetLogger("a.b").SetPropagate(false)

	assert.Equal(t, ErrorLevel, ab.EffectiveLevel())
}

func TestDispatch_Order(t *testing.T) {
	sys, _ := newTestSystem()
	var order []string
	add := func(l *Logger, name string) {
		l.AddHandler(handler.NewFuncHandler(func(*core.Context) error {
			order = append(order, name)
			return nil
		}))
	}
	add(sys.Root(), "root")
	add(sys.GetLogger("a"), "a")
	add(sys.GetLogger("a.b"), "a.b-1")
	add(sys.GetLogger("a.b"), "a.b-2")

	require.NoError(t, sys.GetLogger("a.b").Log("INFO", "x"))
	assert.Equal(t, []string{"a.b-1", "a.b-2", "a", "root"}, order)
}

func TestLevelFiltering(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	l := sys.GetLogger("svc").AddHandler(rec)
	require.NoError(t, l.SetLevel("WARN"))

	require.NoError(t, l.Log("INFO", "info"))
	assert.Empty(t, rec.messages())

	require.NoError(t, l.Log("WARN", "warn"))
	require.NoError(t, l.Log("CRITICAL", "critical"))
	assert.Equal(t, []string{"warn", "critical"}, rec.messages())

	assert.False(t, l.IsEnabledFor("INFO"))
	assert.True(t, l.IsEnabledFor(ErrorLevel))
	assert.False(t, l.IsEnabledFor("NOPE"))
}

func TestUnknownLevel_FailsFast(t *testing.T) {
	sys, errOut := newTestSystem()
	touched := false
	sys.Root().AddHandler(handler.NewFuncHandler(func(*core.Context) error {
		touched = true
		return nil
	}))

	err := sys.Root().Log("NOT_A_LEVEL", "msg")
	var ule *core.UnknownLevelError
	require.ErrorAs(t, err, &ule)
	assert.Equal(t, "NOT_A_LEVEL", ule.Level)
	assert.False(t, touched)
	assert.Empty(t, errOut.String())
}

func TestHandlerIsolation(t *testing.T) {
	sys, errOut := newTestSystem()
	rec := newRecorder("second")
	sys.Root().AddHandler(
		handler.NewFuncHandler(func(*core.Context) error { return errors.New("disk full") }),
		handler.NewFuncHandler(func(*core.Context) error { panic("boom") }),
		rec,
	)

	assert.NotPanics(t, func() {
		require.NoError(t, sys.GetLogger("app").Log("ERROR", "still delivered"))
	})
	assert.Equal(t, []string{"still delivered"}, rec.messages())
	assert.Contains(t, errOut.String(), `failed on logger "app": disk full`)
	assert.Contains(t, errOut.String(), "panic: boom")
}

type panickyEnabled struct {
	handler.FuncHandler
}

func (*panickyEnabled) Enabled(*core.Context) bool { panic("enabled") }

func TestHandlerIsolation_EnabledPanics(t *testing.T) {
	sys, errOut := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(&panickyEnabled{}, rec)

	require.NoError(t, sys.Root().Log("INFO", "ok"))
	assert.Len(t, rec.messages(), 1)
	assert.Contains(t, errOut.String(), "panic: enabled")
}

func TestHandlerError_Identity(t *testing.T) {
	sys, errOut := newTestSystem()
	failing := handler.NewFuncHandler(func(*core.Context) error { return errors.New("nope") })
	failing.SetName("audit")
	sys.Root().AddHandler(failing)

	sys.Root().Info("x")
	assert.Equal(t, "treelog: handler \"audit\" (*handler.FuncHandler) failed on logger \"root\": nope\n", errOut.String())
}

func TestMessageRendering(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	require.NoError(t, sys.Root().Log("INFO", "Count: %s", 3))
	assert.Equal(t, []string{"Count: 3"}, rec.messages())

	ctx := rec.last()
	assert.Equal(t, ctx.Render(), ctx.Render())
	assert.Equal(t, "INFO", ctx.LevelName)
	assert.Equal(t, InfoLevel, ctx.Level)
	assert.Equal(t, "Count: %s", ctx.Template)
}

func TestLazyArgumentsSkippedWhenFiltered(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)
	require.NoError(t, sys.Root().SetLevel("INFO"))

	calls := 0
	expensive := core.Lazy(func() any { calls++; return "v" })
	sys.Root().Debug("%s", expensive)
	assert.Equal(t, 0, calls)

	sys.Root().Info("%s", expensive)
	assert.Equal(t, 0, calls, "not rendered until read")
	assert.Equal(t, []string{"v"}, rec.messages())
	assert.Equal(t, 1, calls)
}

func TestPerLevelMethods_Chain(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	l := sys.GetLogger("chain").AddHandler(rec)

	got := l.Trace("t").Debug("d").Info("i").Warn("w").Error("e").Critical("c")
	assert.Same(t, l, got)
	assert.Equal(t, []string{"t", "d", "i", "w", "e", "c"}, rec.messages())
}

func TestCustomLevels(t *testing.T) {
	levels, err := core.NewLevels("low", "notice", "high")
	require.NoError(t, err)
	sys, errOut := newTestSystem(WithLevels(levels))
	rec := newRecorder("rec")
	l := sys.GetLogger("custom").AddHandler(rec)

	notice, err := l.At("notice")
	require.NoError(t, err)
	notice("hello %s", "there").Info("dropped")

	assert.Equal(t, []string{"hello there"}, rec.messages())
	assert.Equal(t, "NOTICE", rec.last().LevelName)
	assert.ErrorIs(t, func() error { _, err := l.At("INFO"); return err }(), core.ErrUnknownLevel)
	assert.Contains(t, errOut.String(), `unknown level "INFO"`)
}

func TestExtraMerge(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec).SetExtra("app", "shop").SetExtra("env", "prod")
	sys.GetLogger("db").SetExtra("env", "staging").SetExtra("component", "db").SetPropagate(false).AddHandler(rec)

	sys.GetLogger("db.pool").Info("x")

	assert.Equal(t, map[string]any{"app": "shop", "env": "staging", "component": "db"}, rec.last().Extra)
}

func TestExtra_Accessors(t *testing.T) {
	sys, _ := newTestSystem()
	l := sys.GetLogger("x").SetExtras(map[string]any{"a": 1, "b": 2}).DeleteExtra("a")

	assert.Equal(t, map[string]any{"b": 2}, l.Extra())
	assert.Nil(t, sys.GetLogger("y").EffectiveExtra())
}

func TestSilence_Logger(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	l := sys.GetLogger("quiet").AddHandler(rec)

	l.Silence()
	assert.NoError(t, l.Log("NOT_A_LEVEL", "silenced loggers do nothing"))
	l.Info("muted")
	assert.Empty(t, rec.messages())

	l.Unsilence().Info("heard")
	assert.Equal(t, []string{"heard"}, rec.messages())
}

func TestSilence_Global(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	console := newRecorder("console")
	console.SetConsole(true)
	sys.Root().AddHandler(rec, console)

	sys.Silence(false)
	sys.Root().Info("console muted")
	assert.Equal(t, []string{"console muted"}, rec.messages())
	assert.Empty(t, console.messages())

	sys.Silence(true)
	assert.True(t, sys.Root().Silenced())
	sys.Root().Info("all muted")
	assert.Len(t, rec.messages(), 1)

	sys.Unsilence()
	sys.Root().Info("back")
	assert.Len(t, rec.messages(), 2)
	assert.Equal(t, []string{"back"}, console.messages())
}

func TestHandlerOwnLevel(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	rec.SetLevel(ErrorLevel)
	sys.Root().AddHandler(rec)

	sys.Root().Warn("skipped").Error("kept")
	assert.Equal(t, []string{"kept"}, rec.messages())
}

func TestRemoveAndSetHandlers(t *testing.T) {
	sys, _ := newTestSystem()
	a, b := newRecorder("a"), newRecorder("b")
	l := sys.GetLogger("h").AddHandler(a, b)

	assert.True(t, l.RemoveHandler(a))
	assert.False(t, l.RemoveHandler(a))
	assert.Equal(t, []handler.Handler{b}, l.Handlers())

	l.SetHandlers(a)
	assert.Equal(t, []handler.Handler{a}, l.Handlers())
}

// taggedHandler is a value handler whose type is not comparable
type taggedHandler struct {
	tags []string
}

func (taggedHandler) Enabled(*core.Context) bool { return true }
func (taggedHandler) Handle(*core.Context) error { return nil }
func (taggedHandler) Close() error               { return nil }

func TestRemoveHandler_NonComparable(t *testing.T) {
	sys, _ := newTestSystem()
	a := newRecorder("a")
	tagged := taggedHandler{tags: []string{"x"}}
	l := sys.GetLogger("h").AddHandler(tagged, a)

	assert.NotPanics(t, func() {
		assert.False(t, l.RemoveHandler(taggedHandler{tags: []string{"x"}}))
	})
	assert.True(t, l.RemoveHandler(a))
	assert.Len(t, l.Handlers(), 1)
	assert.False(t, l.RemoveHandler(nil))
}

func TestCaller(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	sys.GetLogger("c").Info("from test")
	site := rec.last().Caller()
	assert.True(t, site.Defined)
	assert.Equal(t, "logger_test.go", filepath.Base(site.File))
	assert.Equal(t, "TestCaller", site.Function)

	require.NoError(t, sys.GetLogger("c").Log("INFO", "via Log"))
	assert.Equal(t, "TestCaller", rec.last().Func())

	warn, err := sys.GetLogger("c").At("WARN")
	require.NoError(t, err)
	warn("via At")
	assert.Equal(t, "TestCaller", rec.last().Func())
}

func TestCaller_Disabled(t *testing.T) {
	sys, _ := newTestSystem(WithCaller(false))
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	sys.Root().Info("x")
	assert.False(t, rec.last().Caller().Defined)
}

func TestCoarseClock(t *testing.T) {
	sys, _ := newTestSystem(WithCoarseClock(true))
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	sys.Root().Info("x")
	assert.False(t, rec.last().Time.IsZero())
}

func TestNameFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"server.go", "server"},
		{"internal/db/pool.go", "internal.db.pool"},
		{"./cmd/app/main.go", "cmd.app.main"},
		{"README", "README"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameFor(tt.path), tt.path)
	}
}

func TestNameFor_MainDir(t *testing.T) {
	dir := t.TempDir()
	core.SetMainDir(dir)
	t.Cleanup(func() { core.SetMainDir("") })

	assert.Equal(t, "api.handlers", NameFor(filepath.Join(dir, "api", "handlers.go")))
	assert.Equal(t, "other", NameFor(filepath.Join(t.TempDir(), "other.go")))
}

func TestLoggerForCaller(t *testing.T) {
	sys, _ := newTestSystem()
	l := sys.LoggerForCaller()
	assert.Contains(t, l.Name(), "logger_test")
}

type closeCounter struct {
	handler.FuncHandler
	closes int
}

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

func TestSystem_CloseOnce(t *testing.T) {
	sys, _ := newTestSystem()
	shared := &closeCounter{}
	plain := handler.NewFuncHandler(nil)
	sys.Root().AddHandler(shared)
	sys.GetLogger("a").AddHandler(shared, plain)
	sys.GetLogger("b").AddHandler(shared)

	require.NoError(t, sys.Close())
	assert.Equal(t, 1, shared.closes)
}

func TestDefaultSystem(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var errOut bytes.Buffer
	sys := Init(WithErrorOutput(&errOut))
	assert.Same(t, sys, Default())
	assert.Len(t, Root().Handlers(), 1)

	rec := newRecorder("rec")
	Root().SetHandlers(rec)
	Info("hello %s", "world")
	require.NoError(t, Log("WARN", "w"))
	assert.Equal(t, []string{"hello world", "w"}, rec.messages())
	assert.Equal(t, "TestDefaultSystem", rec.last().Func())

	Silence(true)
	Critical("muted")
	Unsilence()
	assert.Len(t, rec.messages(), 2)

	assert.Same(t, GetLogger("x"), Default().GetLogger("x"))
	idx, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, idx)
}
