package arena

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PhysicsWorld holds the global simulation settings and the per-step broadphase.
type PhysicsWorld struct {
	Gravity mgl32.Vec3
	// MaxStep is the longest substep in seconds; longer frames are split.
	MaxStep float32
	// GroundNormalY is the minimum contact normal Y that counts as standing on ground.
	GroundNormalY float32
	// MaxFrameTime caps a frame's simulated time after stalls.
	MaxFrameTime float32

	grid       *SpatialHashGrid
	fixed      map[EntityId]colliderRef
	halfSpaces []EntityId
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		Gravity:       mgl32.Vec3{0, -9.81, 0},
		MaxStep:       1.0 / 30.0,
		GroundNormalY: 0.7,
		MaxFrameTime:  0.25,
		grid:          NewSpatialHashGrid(4.0),
		fixed:         make(map[EntityId]colliderRef),
	}
}

// PhysicsModule installs the PhysicsWorld and its step. A zero Gravity keeps the default.
type PhysicsModule struct {
	Gravity mgl32.Vec3
}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	world := NewPhysicsWorld()
	if m.Gravity != (mgl32.Vec3{}) {
		world.Gravity = m.Gravity
	}
	cmd.AddResources(world)

	app.UseSystem(
		System(PhysicsSystem).
			InStage(Update).
			RunAlways(),
	)
}

type colliderRef struct {
	eid     EntityId
	body    EntityId
	hasBody bool
	col     ColliderComponent
	tr      TransformComponent
	groups  CollisionGroups
}

type movingBody struct {
	eid       EntityId
	tr        *TransformComponent
	rb        *RigidBodyComponent
	colliders []colliderRef
	offsets   []mgl32.Vec3
}

// collectColliders splits colliders into fixed ones and those owned by simulated bodies.
// A collider belongs to the rigid body on its own entity, else to its parent's.
func collectColliders(cmd *Commands) (fixed []colliderRef, moving map[EntityId]*movingBody) {
	moving = make(map[EntityId]*movingBody)

	MakeQuery4[ColliderComponent, TransformComponent, CollisionGroups, Parent](cmd).Map(
		func(eid EntityId, col *ColliderComponent, tr *TransformComponent, groups *CollisionGroups, parent *Parent) bool {
			ref := colliderRef{eid: eid, col: *col, tr: *tr}

			var rb *RigidBodyComponent
			if rb = GetComponent[RigidBodyComponent](cmd, eid); rb != nil {
				ref.body, ref.hasBody = eid, true
			} else if parent != nil {
				if rb = GetComponent[RigidBodyComponent](cmd, parent.Entity); rb != nil {
					ref.body, ref.hasBody = parent.Entity, true
				}
			}

			switch {
			case groups != nil:
				ref.groups = *groups
			case ref.hasBody && ref.body != eid:
				if bodyGroups := GetComponent[CollisionGroups](cmd, ref.body); bodyGroups != nil {
					ref.groups = *bodyGroups
				} else {
					ref.groups = DefaultCollisionGroups()
				}
			default:
				ref.groups = DefaultCollisionGroups()
			}

			if rb == nil || rb.Kind == RigidBodyFixed {
				fixed = append(fixed, ref)
				return true
			}

			body, ok := moving[ref.body]
			if !ok {
				bodyTr := GetComponent[TransformComponent](cmd, ref.body)
				if bodyTr == nil {
					return true
				}
				body = &movingBody{eid: ref.body, tr: bodyTr, rb: rb}
				moving[ref.body] = body
			}
			body.colliders = append(body.colliders, ref)
			body.offsets = append(body.offsets, tr.Position.Sub(body.tr.Position))
			return true
		}, CollisionGroups{}, Parent{})

	return fixed, moving
}

func (physics *PhysicsWorld) rebuildBroadphase(fixed []colliderRef) {
	physics.grid.Clear()
	clear(physics.fixed)
	physics.halfSpaces = physics.halfSpaces[:0]

	for _, ref := range fixed {
		physics.fixed[ref.eid] = ref
		aabb, bounded := ref.col.WorldAABB(ref.tr)
		if !bounded {
			physics.halfSpaces = append(physics.halfSpaces, ref.eid)
			continue
		}
		physics.grid.Insert(ref.eid, aabb)
	}
}

// PhysicsSystem advances every non-fixed body. Dynamic bodies fall, kinematic ones only move
// with their velocity; both are pushed out of fixed colliders they are allowed to touch.
func PhysicsSystem(cmd *Commands, t *Time, physics *PhysicsWorld) {
	dt := t.DeltaSeconds()
	if dt <= 0 {
		return
	}
	if physics.MaxFrameTime > 0 && dt > physics.MaxFrameTime {
		dt = physics.MaxFrameTime
	}

	fixed, moving := collectColliders(cmd)
	physics.rebuildBroadphase(fixed)

	// Bodies without colliders still integrate.
	MakeQuery2[TransformComponent, RigidBodyComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, rb *RigidBodyComponent) bool {
		if rb.Kind == RigidBodyFixed {
			return true
		}
		if _, ok := moving[eid]; !ok {
			moving[eid] = &movingBody{eid: eid, tr: tr, rb: rb}
		}
		return true
	})

	steps := 1
	if physics.MaxStep > 0 {
		steps = max(1, int(math.Ceil(float64(dt/physics.MaxStep))))
	}
	h := dt / float32(steps)

	for _, body := range moving {
		body.rb.Grounded = false
		for i := 0; i < steps; i++ {
			physics.stepBody(body, h)
		}
	}
}

func (physics *PhysicsWorld) stepBody(body *movingBody, h float32) {
	rb := body.rb
	if rb.Kind == RigidBodyDynamic && rb.GravityScale != 0 {
		rb.Velocity = rb.Velocity.Add(physics.Gravity.Mul(rb.GravityScale * h))
	}

	displacement := rb.Velocity.Mul(h)
	if !isFiniteVec3(displacement) {
		rb.Velocity = mgl32.Vec3{}
		return
	}
	body.tr.Position = body.tr.Position.Add(displacement)

	for i, ref := range body.colliders {
		pose := ref.tr
		pose.Position = body.tr.Position.Add(body.offsets[i])

		for _, other := range physics.candidates(ref.col, pose) {
			if !ref.groups.Interacts(other.groups) {
				continue
			}
			normal, depth, hit := penetration(ref.col, pose, other.col, other.tr)
			if !hit {
				continue
			}

			push := normal.Mul(depth)
			body.tr.Position = body.tr.Position.Add(push)
			pose.Position = pose.Position.Add(push)

			if vn := rb.Velocity.Dot(normal); vn < 0 {
				rb.Velocity = rb.Velocity.Sub(normal.Mul(vn))
			}
			if normal.Y() >= physics.GroundNormalY {
				rb.Grounded = true
			}
		}
	}
}

func (physics *PhysicsWorld) candidates(col ColliderComponent, pose TransformComponent) []colliderRef {
	var out []colliderRef
	for _, eid := range physics.halfSpaces {
		out = append(out, physics.fixed[eid])
	}
	aabb, bounded := col.WorldAABB(pose)
	if !bounded {
		return out
	}
	for _, eid := range physics.grid.QueryAABB(aabb) {
		ref := physics.fixed[eid]
		if other, ok := ref.col.WorldAABB(ref.tr); ok && other.Overlaps(aabb) {
			out = append(out, ref)
		}
	}
	return out
}

type RaycastHit struct {
	Hit    bool
	T      float32
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	Entity EntityId
}

// Raycast returns the closest fixed collider hit within maxDist whose groups interact with filter.
func Raycast(cmd *Commands, origin, dir mgl32.Vec3, maxDist float32, filter CollisionGroups) RaycastHit {
	if dir.Len() < 1e-6 {
		return RaycastHit{}
	}
	dir = dir.Normalize()

	fixed, _ := collectColliders(cmd)
	best := RaycastHit{T: maxDist}
	for _, ref := range fixed {
		if !filter.Interacts(ref.groups) {
			continue
		}
		t, normal, ok := rayCollider(origin, dir, ref.col, ref.tr)
		if !ok || t < 0 || t > best.T {
			continue
		}
		best = RaycastHit{
			Hit:    true,
			T:      t,
			Point:  origin.Add(dir.Mul(t)),
			Normal: normal,
			Entity: ref.eid,
		}
	}
	if !best.Hit {
		return RaycastHit{}
	}
	return best
}

func rayCollider(origin, dir mgl32.Vec3, col ColliderComponent, tr TransformComponent) (float32, mgl32.Vec3, bool) {
	switch col.Shape {
	case ShapeHalfSpace:
		n := col.worldNormal(tr)
		denom := n.Dot(dir)
		if denom >= -1e-6 {
			return 0, mgl32.Vec3{}, false
		}
		return n.Dot(tr.Position.Sub(origin)) / denom, n, true

	case ShapeBall:
		r := col.Radius * maxAbsComponent(tr.Scale)
		oc := origin.Sub(tr.Position)
		b := oc.Dot(dir)
		c := oc.Dot(oc) - r*r
		disc := b*b - c
		if disc < 0 {
			return 0, mgl32.Vec3{}, false
		}
		t := -b - float32(math.Sqrt(float64(disc)))
		if t < 0 {
			return 0, mgl32.Vec3{}, false
		}
		return t, origin.Add(dir.Mul(t)).Sub(tr.Position).Normalize(), true
	}

	// Boxes and capsule bounds are slab-tested in object space.
	half := col.HalfExtents
	if col.Shape == ShapeCapsule {
		half = mgl32.Vec3{col.Radius, col.HalfHeight + col.Radius, col.Radius}
	}
	w2o := tr.Mat4().Inv()
	localOrigin := w2o.Mul4x1(origin.Vec4(1)).Vec3()
	localDir := w2o.Mul4x1(dir.Vec4(0)).Vec3()

	tMin, tMax := float32(math.Inf(-1)), float32(math.Inf(1))
	axis := -1
	var sign float32
	for i := 0; i < 3; i++ {
		if abs32(localDir[i]) < 1e-9 {
			if localOrigin[i] < -half[i] || localOrigin[i] > half[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		t1 := (-half[i] - localOrigin[i]) / localDir[i]
		t2 := (half[i] - localOrigin[i]) / localDir[i]
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tMin {
			tMin, axis, sign = t1, i, s
		}
		tMax = min(tMax, t2)
		if tMin > tMax {
			return 0, mgl32.Vec3{}, false
		}
	}
	if axis < 0 || tMin < 0 {
		return 0, mgl32.Vec3{}, false
	}

	var localNormal mgl32.Vec3
	localNormal[axis] = sign
	worldHit := tr.TransformPoint(localOrigin.Add(localDir.Mul(tMin)))
	normal := tr.rotation().Rotate(localNormal).Normalize()
	return worldHit.Sub(origin).Len(), normal, true
}
