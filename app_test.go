package arena

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResource1 struct {
	name string
}

type mockResource2 struct {
	name string
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	assert.Panics(t, func() { app.changeState(3) })
}

func TestApp_changeState_stateless(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Panics(t, func() { app.changeState(1) })
}

func TestApp_addResources(t *testing.T) {
	app := &App{resources: make(map[reflect.Type]any)}

	r1 := &mockResource1{name: "one"}
	app.addResources(r1, &mockResource2{name: "two"})

	got, ok := Resource[mockResource1](app)
	require.True(t, ok)
	assert.Same(t, r1, got)

	_, ok = Resource[Time](app)
	assert.False(t, ok)

	assert.Panics(t, func() { app.addResources(&mockResource1{}) }, "duplicate resource")
	assert.Panics(t, func() { app.addResources(mockResource2{}) }, "resources must be pointers")
}

func TestApp_callSystem_resolvesArguments(t *testing.T) {
	app := NewAppBuilder().Build()
	app.addResources(&mockResource1{name: "res"})

	called := false
	app.callSystem(func(cmd *Commands, res *mockResource1, log Logger) {
		called = true
		assert.NotNil(t, cmd)
		assert.Equal(t, "res", res.name)
		assert.NotNil(t, log)
	})
	assert.True(t, called)
}

func TestApp_callSystem_unresolved(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Panics(t, func() {
		app.callSystem(func(res *mockResource2) {})
	})
	assert.Panics(t, func() {
		app.callSystem(func(n int) {})
	})
}

func TestApp_statePhases(t *testing.T) {
	const (
		first State = iota
		second
		last
	)

	var calls []string
	record := func(s string) func() {
		return func() { calls = append(calls, s) }
	}

	app := NewAppBuilder().UseStates(first, last).Build()
	app.UseSystem(System(record("enter first")).InState(OnEnter(first)))
	app.UseSystem(System(record("exec first")).InState(OnExecute(first)))
	app.UseSystem(System(record("exit first")).InState(OnExit(first)))
	app.UseSystem(System(record("enter second")).InState(OnEnter(second)))
	app.UseSystem(System(func(cmd *Commands) {
		calls = append(calls, "exec second")
		cmd.Exit()
	}).InState(OnExecute(second)))
	app.UseSystem(System(record("exit last")).InState(OnExit(last)))
	app.UseSystem(System(func(cmd *Commands) {
		if cmd.State() == first {
			cmd.ChangeState(second)
		}
	}).InStage(Finale).InState(OnExecute(first)))

	app.Run()

	assert.Equal(t, []string{
		"enter first",
		"exec first",
		"exit first",
		"enter second",
		"exec second",
		"exit last",
	}, calls)
	assert.True(t, app.Finished())
	assert.Equal(t, last, app.State())
	assert.Equal(t, uint64(2), app.Frame())
}

func TestApp_statelessSystemsSkipEnter(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()

	runs := 0
	app.UseSystem(System(func() { runs++ }).RunAlways())
	app.Startup()
	assert.Equal(t, 0, runs)

	app.Update()
	assert.Equal(t, 1, runs)
}

func TestApp_statelessExit(t *testing.T) {
	app := NewAppBuilder().Build()

	frames := 0
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 3 {
			cmd.Exit()
		}
	}))
	app.Run()

	assert.Equal(t, 3, frames)
	assert.True(t, app.Finished())
}

func TestApp_useSystem_panics(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InState(OnEnter(0)))
	}, "stateful system in a stateless app")
	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"}))
	})
}

func TestApp_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	physics := Stage{Name: "Physics", UpdateType: FixedUpdate}
	app.UseStage(physics, AfterStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
	app.UseSystem(System(func() { order = append(order, "physics") }).InStage(physics))
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))
	app.Update()

	assert.Equal(t, []string{"update", "physics", "post"}, order)
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Nope"})) })
}

type spawnChain struct {
	depth int
	out   *[]EntityId
}

func (c spawnChain) Apply(cmd *Commands) {
	*c.out = append(*c.out, cmd.AddEntity(&position{X: float32(c.depth)}))
	if c.depth > 0 {
		cmd.Add(spawnChain{depth: c.depth - 1, out: c.out})
	}
}

func TestApp_FlushCommands_drainsNestedCommands(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	var spawned []EntityId
	cmd.Add(spawnChain{depth: 2, out: &spawned})
	app.FlushCommands()

	require.Len(t, spawned, 3)
	for _, eid := range spawned {
		assert.True(t, cmd.HasEntity(eid))
	}
	assert.False(t, app.hasPendingCommands())
}

func TestApp_FlushCommands_order(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	eid := cmd.AddEntity(&position{X: 1})
	cmd.AddComponents(eid, &velocity{X: 2})
	cmd.Add(CommandFunc(func(cmd *Commands) {
		assert.True(t, HasComponent[velocity](cmd, eid), "structural changes are applied before commands")
		cmd.RemoveComponents(eid, &velocity{})
	}))
	app.FlushCommands()

	assert.True(t, HasComponent[position](cmd, eid))
	assert.False(t, HasComponent[velocity](cmd, eid))

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	assert.False(t, cmd.HasEntity(eid))
	assert.Equal(t, 0, cmd.EntityCount())
}

func TestApp_FlushCommands_removeBeforeInsert(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	kept := cmd.AddEntity(&position{X: 1})
	dropped := cmd.AddEntity(&position{X: 2})
	cmd.AddComponents(dropped, &velocity{X: 3})
	cmd.RemoveEntity(dropped)
	app.FlushCommands()

	assert.True(t, cmd.HasEntity(kept))
	assert.False(t, cmd.HasEntity(dropped))
	assert.Equal(t, 1, cmd.EntityCount())
	assert.False(t, app.hasPendingCommands())
}

func TestCommands_SpawnChild(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	parent := cmd.AddEntity(&position{})
	child := cmd.SpawnChild(parent, &velocity{})
	app.FlushCommands()

	p := GetComponent[Parent](cmd, child)
	require.NotNil(t, p)
	assert.Equal(t, parent, p.Entity)
}

func TestCommands_GetAllComponents(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	eid := cmd.AddEntity(&position{X: 1}, &Name{Value: "thing"})
	app.FlushCommands()

	comps := cmd.GetAllComponents(eid)
	assert.ElementsMatch(t, []any{position{X: 1}, Name{Value: "thing"}}, comps)
	assert.Nil(t, cmd.GetAllComponents(EntityId(999)))
}
