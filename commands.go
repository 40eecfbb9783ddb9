package arena

// Command is a custom deferred operation. Apply runs during the next flush,
// after the structural changes buffered before it.
type Command interface {
	Apply(cmd *Commands)
}

// CommandFunc adapts a function to Command.
type CommandFunc func(cmd *Commands)

func (f CommandFunc) Apply(cmd *Commands) { f(cmd) }

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Exit asks the app to stop: stateful apps move to their final state, stateless ones finish after the frame.
func (cmd *Commands) Exit() *Commands {
	cmd.app.requestExit()
	return cmd
}

func (cmd *Commands) State() State {
	return cmd.app.state
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves an id immediately; the entity exists after the next flush.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

// SpawnChild adds an entity parented to parent.
func (cmd *Commands) SpawnChild(parent EntityId, components ...any) EntityId {
	return cmd.AddEntity(append(components, &Parent{Entity: parent})...)
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompRemoval{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// Add queues a custom command.
func (cmd *Commands) Add(c Command) {
	cmd.app.pendingCommands = append(cmd.app.pendingCommands, c)
}

func (cmd *Commands) HasEntity(entityId EntityId) bool {
	return cmd.app.ecs.hasEntity(entityId)
}

func (cmd *Commands) EntityCount() int {
	return cmd.app.ecs.entityCount()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// GetAllComponents returns copies of every component of the entity, in no particular order.
func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex.Get(entityId)
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]

	row := arch.entities[entityId]

	var res []any
	for _, componentsSlice := range arch.componentData {
		val := columnAt(componentsSlice, int(row))
		res = append(res, val.Interface())
	}
	return res
}
