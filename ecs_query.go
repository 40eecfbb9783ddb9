package arena

import (
	"reflect"
)

// Queries iterate every archetype holding the requested components.
// Components listed as optionals may be absent; Map then receives a nil pointer for them.
// Returning false from the callback stops the iteration.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }
type Query4[A, B, C, D any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}

// column resolves the typed storage of one query argument within an archetype.
// ok is false when the archetype must be skipped.
func column[T any](ecs *Ecs, arch *archetype, opt set[componentId]) (comps []T, present bool, ok bool) {
	id := componentIdOf[T](ecs)
	if data, has := arch.componentData[id]; has {
		return data.([]T), true, true
	}
	if _, optional := opt[id]; optional {
		return nil, false, true
	}
	return nil, false, false
}

func at[T any](comps []T, present bool, r row) *T {
	if !present {
		return nil
	}
	return &comps[r]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		ca, pa, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.entities {
			if !m(entityId, at(ca, pa, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		ca, pa, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}
		cb, pb, ok := column[B](q.ecs, arch, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.entities {
			if !m(entityId, at(ca, pa, r), at(cb, pb, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		ca, pa, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}
		cb, pb, ok := column[B](q.ecs, arch, opt)
		if !ok {
			continue
		}
		cc, pc, ok := column[C](q.ecs, arch, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.entities {
			if !m(entityId, at(ca, pa, r), at(cb, pb, r), at(cc, pc, r)) {
				return
			}
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		ca, pa, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}
		cb, pb, ok := column[B](q.ecs, arch, opt)
		if !ok {
			continue
		}
		cc, pc, ok := column[C](q.ecs, arch, opt)
		if !ok {
			continue
		}
		cd, pd, ok := column[D](q.ecs, arch, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.entities {
			if !m(entityId, at(ca, pa, r), at(cb, pb, r), at(cc, pc, r), at(cd, pd, r)) {
				return
			}
		}
	}
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		t := reflect.TypeOf(c)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		res[ecs.getComponentId(t)] = struct{}{}
	}

	return res
}

func componentIdOf[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[T]())
}

// GetComponent returns a pointer into the entity's storage, or nil when the
// entity doesn't exist or lacks the component. The pointer is valid until the next flush.
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	ptr := cmd.app.ecs.componentPtr(entityId, reflect.TypeFor[T]())
	if !ptr.IsValid() {
		return nil
	}
	return ptr.Interface().(*T)
}

func HasComponent[T any](cmd *Commands, entityId EntityId) bool {
	return GetComponent[T](cmd, entityId) != nil
}
