package arena

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module bundles resources and systems. Install runs once, in UseModule order, during Build.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	started            bool
	finished           bool
	exitRequested      bool
	frame              uint64

	stages           []Stage
	systems          map[string]map[State]map[statePhase][]systemFn
	systemsStateless map[string][]systemFn
	resources        map[reflect.Type]any
	ecs              *Ecs

	// Command Buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
	pendingCommands     []Command
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// State returns the current state. Meaningless for stateless apps.
func (app *App) State() State {
	return app.state
}

// Finished reports whether the app reached its final state (or exit was requested in a stateless app).
func (app *App) Finished() bool {
	return app.finished
}

// Frame returns the number of completed Update calls.
func (app *App) Frame() uint64 {
	return app.frame
}

func (app *App) Run() {
	app.Startup()
	for !app.finished {
		app.Update()
	}
}

// Startup enters the initial state. It is a no-op after the first call.
func (app *App) Startup() {
	if app.started {
		return
	}
	app.started = true

	if app.stateful {
		app.Logger().Infof("Running in stateful mode, initial state %v", app.initialState)
		app.state = app.initialState
		app.callSystems(app.state, enter)
	} else {
		app.Logger().Infof("Running in stateless mode")
	}
}

// Update runs one frame and applies a pending state transition at its end.
func (app *App) Update() {
	if !app.started {
		app.Startup()
	}
	if app.finished {
		return
	}

	app.callSystems(app.state, execute)
	app.frame++

	if !app.stateful {
		if app.exitRequested {
			app.finished = true
		}
		return
	}

	if app.stateTransitioning {
		app.stateTransitioning = false
		app.executeChangeState(app.nextState)
	}

	if app.state == app.finalState {
		app.callSystems(app.state, exit)
		app.finished = true
	}
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		// On execute, call stateless/always run systems first
		if execute == phase {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			for _, system := range app.systems[stage.Name][state][phase] {
				app.callSystem(system)
			}
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	if !app.stateful {
		panic("Trying to change state in a stateless app.")
	}
	if newState < app.initialState || newState > app.finalState {
		panic(fmt.Sprintf("State %v doesn't exist", newState))
	}
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.Logger().Debugf("state %v -> %v", app.state, newState)
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) requestExit() {
	if app.stateful {
		app.changeState(app.finalState)
		return
	}
	app.exitRequested = true
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the registered resource of type T.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return res.(*T), true
}

var (
	typeOfCommands = reflect.TypeFor[Commands]()
	typeOfLogger   = reflect.TypeFor[Logger]()
)

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)

		if argType == typeOfLogger {
			args[i] = reflect.ValueOf(app.Logger())
			continue
		}
		if argType.Kind() != reflect.Pointer {
			app.unresolvedDependency(systemValue, systemType, argType)
		}

		underlyingType := argType.Elem()
		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolvedDependency(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolvedDependency(systemValue reflect.Value, systemType reflect.Type, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

func (app *App) hasPendingCommands() bool {
	return len(app.pendingAdditions) > 0 ||
		len(app.pendingRemovals) > 0 ||
		len(app.pendingCompAdds) > 0 ||
		len(app.pendingCompRemovals) > 0 ||
		len(app.pendingCommands) > 0
}

// FlushCommands applies every buffered command. Custom commands run last and may
// buffer more work, so flushing repeats until all queues are drained.
func (app *App) FlushCommands() {
	for app.hasPendingCommands() {
		// Removals first, so we don't add to dead entities. An entity spawned and
		// removed before the same flush is never inserted.
		removed := make(set[EntityId], len(app.pendingRemovals))
		for _, eid := range app.pendingRemovals {
			app.Logger().Debugf("flush: removing entity %v", eid)
			app.ecs.removeEntity(eid)
			removed[eid] = struct{}{}
		}
		app.pendingRemovals = app.pendingRemovals[:0]

		for _, add := range app.pendingAdditions {
			if _, ok := removed[add.eid]; ok {
				continue
			}
			app.ecs.insertEntity(add.eid, add.components...)
		}
		app.pendingAdditions = app.pendingAdditions[:0]

		for _, add := range app.pendingCompAdds {
			app.ecs.addComponents(add.eid, add.components...)
		}
		app.pendingCompAdds = app.pendingCompAdds[:0]

		for _, rm := range app.pendingCompRemovals {
			app.ecs.removeComponents(rm.eid, rm.components...)
		}
		app.pendingCompRemovals = app.pendingCompRemovals[:0]

		commands := app.pendingCommands
		app.pendingCommands = nil
		cmd := app.Commands()
		for _, c := range commands {
			c.Apply(cmd)
		}
	}
}
