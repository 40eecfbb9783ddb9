package arena

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world-space pose of an entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() TransformComponent {
	return TransformComponent{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func TransformFromTranslation(position mgl32.Vec3) TransformComponent {
	tr := NewTransform()
	tr.Position = position
	return tr
}

func (tr TransformComponent) WithRotation(rotation mgl32.Quat) TransformComponent {
	tr.Rotation = rotation
	return tr
}

func (tr TransformComponent) WithScale(scale mgl32.Vec3) TransformComponent {
	tr.Scale = scale
	return tr
}

// LookTo rotates the transform so local -Z points along direction and local +Y
// is as close to up as possible. Degenerate input leaves the rotation untouched.
func (tr *TransformComponent) LookTo(direction mgl32.Vec3, up mgl32.Vec3) {
	if direction.Len() < 1e-6 || up.Len() < 1e-6 {
		return
	}
	back := direction.Normalize().Mul(-1)
	right := up.Normalize().Cross(back)
	if right.Len() < 1e-6 {
		return
	}
	right = right.Normalize()
	trueUp := back.Cross(right)

	tr.Rotation = mgl32.Mat4ToQuat(mgl32.Mat3FromCols(right, trueUp, back).Mat4()).Normalize()
}

// rotation returns a usable quaternion; zero-valued transforms count as identity.
func (tr TransformComponent) rotation() mgl32.Quat {
	if tr.Rotation.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	return tr.Rotation
}

func (tr TransformComponent) Forward() mgl32.Vec3 {
	return tr.rotation().Rotate(mgl32.Vec3{0, 0, -1})
}

func (tr TransformComponent) Right() mgl32.Vec3 {
	return tr.rotation().Rotate(mgl32.Vec3{1, 0, 0})
}

func (tr TransformComponent) Up() mgl32.Vec3 {
	return tr.rotation().Rotate(mgl32.Vec3{0, 1, 0})
}

// Mat4 composes translation * rotation * scale.
func (tr TransformComponent) Mat4() mgl32.Mat4 {
	scale := tr.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Translate3D(tr.Position.X(), tr.Position.Y(), tr.Position.Z()).
		Mul4(tr.rotation().Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// TransformPoint maps a point from local to world space.
func (tr TransformComponent) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return tr.Mat4().Mul4x1(p.Vec4(1)).Vec3()
}

// YawRotation is a rotation of angle radians about +Y.
func YawRotation(angle float32) mgl32.Quat {
	return mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})
}

func isFiniteVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
