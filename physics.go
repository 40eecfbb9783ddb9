package arena

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type RigidBodyKind int

const (
	RigidBodyFixed RigidBodyKind = iota
	RigidBodyDynamic
	RigidBodyKinematicPosition
)

func (k RigidBodyKind) String() string {
	switch k {
	case RigidBodyFixed:
		return "fixed"
	case RigidBodyDynamic:
		return "dynamic"
	case RigidBodyKinematicPosition:
		return "kinematic-position"
	}
	return fmt.Sprintf("RigidBodyKind(%d)", int(k))
}

type RigidBodyComponent struct {
	Kind         RigidBodyKind
	Velocity     mgl32.Vec3
	Mass         float32
	GravityScale float32
	LockRotation bool
	// Grounded is written by the physics step.
	Grounded bool
}

func FixedBody() RigidBodyComponent {
	return RigidBodyComponent{Kind: RigidBodyFixed}
}

func DynamicBody(mass float32) RigidBodyComponent {
	return RigidBodyComponent{Kind: RigidBodyDynamic, Mass: mass, GravityScale: 1}
}

func KinematicBody() RigidBodyComponent {
	return RigidBodyComponent{Kind: RigidBodyKinematicPosition}
}

func (rb *RigidBodyComponent) ApplyImpulse(impulse mgl32.Vec3) {
	if rb.Kind != RigidBodyDynamic {
		return
	}
	if rb.Mass > 0 {
		rb.Velocity = rb.Velocity.Add(impulse.Mul(1.0 / rb.Mass))
	} else {
		rb.Velocity = rb.Velocity.Add(impulse)
	}
}

// Group is a collision layer bitmask.
type Group uint32

const (
	Group1 Group = 1 << iota
	Group2
	Group3
	Group4
	Group5
	Group6
	Group7
	Group8
	Group9
	Group10
	Group11
	Group12
	Group13
	Group14
	Group15
	Group16
	Group17
	Group18
	Group19
	Group20
	Group21
	Group22
	Group23
	Group24
	Group25
	Group26
	Group27
	Group28
	Group29
	Group30
	Group31
	Group32
)

const (
	GroupNone Group = 0
	GroupAll  Group = math.MaxUint32
)

// CollisionGroups says which layers a collider belongs to and which layers it accepts contacts with.
type CollisionGroups struct {
	Memberships Group
	Filters     Group
}

func NewCollisionGroups(memberships Group, filters Group) CollisionGroups {
	return CollisionGroups{Memberships: memberships, Filters: filters}
}

func DefaultCollisionGroups() CollisionGroups {
	return CollisionGroups{Memberships: GroupAll, Filters: GroupAll}
}

// Interacts requires the test in both directions.
func (g CollisionGroups) Interacts(other CollisionGroups) bool {
	return g.Memberships&other.Filters != 0 && other.Memberships&g.Filters != 0
}

type ColliderShape int

const (
	ShapeCuboid ColliderShape = iota
	ShapeBall
	ShapeCapsule
	ShapeHalfSpace
)

func (s ColliderShape) String() string {
	switch s {
	case ShapeCuboid:
		return "cuboid"
	case ShapeBall:
		return "ball"
	case ShapeCapsule:
		return "capsule"
	case ShapeHalfSpace:
		return "half-space"
	}
	return fmt.Sprintf("ColliderShape(%d)", int(s))
}

// ColliderComponent is posed by the entity's world transform. Capsules run along local Y.
// A half-space is the region below the plane through the origin with the given normal.
type ColliderComponent struct {
	Shape       ColliderShape
	HalfExtents mgl32.Vec3
	Radius      float32
	HalfHeight  float32
	Normal      mgl32.Vec3
	Friction    float32
}

func CuboidCollider(hx, hy, hz float32) ColliderComponent {
	return ColliderComponent{Shape: ShapeCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}, Friction: 0.5}
}

func BallCollider(radius float32) ColliderComponent {
	return ColliderComponent{Shape: ShapeBall, Radius: radius, Friction: 0.5}
}

func CapsuleCollider(halfHeight float32, radius float32) ColliderComponent {
	return ColliderComponent{Shape: ShapeCapsule, HalfHeight: halfHeight, Radius: radius, Friction: 0.5}
}

// HalfSpaceCollider fails with ErrDegenerateNormal when normal has no usable direction.
func HalfSpaceCollider(normal mgl32.Vec3) (ColliderComponent, error) {
	if !isFiniteVec3(normal) || normal.Len() < 1e-6 {
		return ColliderComponent{}, fmt.Errorf("half-space normal %v: %w", normal, ErrDegenerateNormal)
	}
	return ColliderComponent{Shape: ShapeHalfSpace, Normal: normal.Normalize(), Friction: 0.5}, nil
}

// Bounded is false for shapes without a finite extent.
func (c ColliderComponent) Bounded() bool {
	return c.Shape != ShapeHalfSpace
}

// extentAlong is the support distance of the posed shape from its centre along the unit axis.
func (c ColliderComponent) extentAlong(tr TransformComponent, axis mgl32.Vec3) float32 {
	scale := tr.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := tr.rotation()
	switch c.Shape {
	case ShapeCuboid:
		var r float32
		for i, local := range [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			r += abs32(axis.Dot(rot.Rotate(local))) * c.HalfExtents[i] * abs32(scale[i])
		}
		return r
	case ShapeBall:
		return c.Radius * maxAbsComponent(scale)
	case ShapeCapsule:
		up := rot.Rotate(mgl32.Vec3{0, 1, 0})
		return c.Radius*maxAbsComponent(scale) + c.HalfHeight*abs32(scale.Y())*abs32(axis.Dot(up))
	}
	return float32(math.Inf(1))
}

// WorldAABB bounds the posed collider. ok is false for half-spaces.
func (c ColliderComponent) WorldAABB(tr TransformComponent) (aabb AABBComponent, ok bool) {
	if !c.Bounded() {
		return AABBComponent{}, false
	}
	half := mgl32.Vec3{
		c.extentAlong(tr, mgl32.Vec3{1, 0, 0}),
		c.extentAlong(tr, mgl32.Vec3{0, 1, 0}),
		c.extentAlong(tr, mgl32.Vec3{0, 0, 1}),
	}
	return AABBComponent{Min: tr.Position.Sub(half), Max: tr.Position.Add(half)}, true
}

// worldNormal is the posed half-space normal.
func (c ColliderComponent) worldNormal(tr TransformComponent) mgl32.Vec3 {
	return tr.rotation().Rotate(c.Normal).Normalize()
}

// penetration tests the moving collider posed at mtr against the fixed collider posed at ftr.
// normal points from the fixed collider towards the moving one.
func penetration(moving ColliderComponent, mtr TransformComponent, fixed ColliderComponent, ftr TransformComponent) (normal mgl32.Vec3, depth float32, hit bool) {
	switch fixed.Shape {
	case ShapeHalfSpace:
		n := fixed.worldNormal(ftr)
		dist := n.Dot(mtr.Position.Sub(ftr.Position)) - moving.extentAlong(mtr, n)
		if dist >= 0 {
			return mgl32.Vec3{}, 0, false
		}
		return n, -dist, true

	case ShapeCuboid, ShapeBall, ShapeCapsule:
		// Separating axes of the fixed box only; balls and capsules are tested through their bounds.
		rot := ftr.rotation()
		delta := mtr.Position.Sub(ftr.Position)
		best := float32(math.Inf(1))
		for _, local := range [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			axis := rot.Rotate(local)
			d := delta.Dot(axis)
			overlap := moving.extentAlong(mtr, axis) + fixed.extentAlong(ftr, axis) - abs32(d)
			if overlap <= 0 {
				return mgl32.Vec3{}, 0, false
			}
			if overlap < best {
				best = overlap
				if d < 0 {
					axis = axis.Mul(-1)
				}
				normal = axis
			}
		}
		return normal, best, true
	}
	return mgl32.Vec3{}, 0, false
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxAbsComponent(v mgl32.Vec3) float32 {
	return max(abs32(v[0]), abs32(v[1]), abs32(v[2]))
}
