package arena

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Parent links a child entity to its parent. The child's LocalTransformComponent
// is relative to the parent's TransformComponent.
type Parent struct {
	Entity EntityId
}

type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func LocalFrom(tr TransformComponent) LocalTransformComponent {
	return LocalTransformComponent{Position: tr.Position, Rotation: tr.Rotation, Scale: tr.Scale}
}

// TransformBundle returns the local and world transform components of a child,
// both initialized to local so the entity has a sane pose before the first propagation.
func TransformBundle(local TransformComponent) []any {
	l := LocalFrom(local)
	w := local
	return []any{&l, &w}
}

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// maxHierarchyDepth bounds the propagation passes; deeper chains converge over several frames.
const maxHierarchyDepth = 8

func TransformHierarchySystem(cmd *Commands) {
	// Multiple passes so grandchildren see their parent's freshly propagated pose.
	for pass := 0; pass < maxHierarchyDepth; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld := GetComponent[TransformComponent](cmd, parent.Entity)
			if parentWorld == nil {
				return true
			}

			composed := composeTransforms(*parentWorld, *local)
			if composed != *world {
				*world = composed
				changed = true
			}
			return true
		})
		if !changed {
			return
		}
	}
}

// composeTransforms propagates components directly to preserve scale signs.
func composeTransforms(parent TransformComponent, local LocalTransformComponent) TransformComponent {
	parentScale := parent.Scale
	if parentScale == (mgl32.Vec3{}) {
		parentScale = mgl32.Vec3{1, 1, 1}
	}
	localScale := local.Scale
	if localScale == (mgl32.Vec3{}) {
		localScale = mgl32.Vec3{1, 1, 1}
	}
	localRot := local.Rotation
	if localRot.Len() < 1e-6 {
		localRot = mgl32.QuatIdent()
	}
	parentRot := parent.rotation()

	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parentScale.X(),
		local.Position.Y() * parentScale.Y(),
		local.Position.Z() * parentScale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parentRot.Rotate(scaledLocalPos)),
		Rotation: parentRot.Mul(localRot).Normalize(),
		Scale: mgl32.Vec3{
			parentScale.X() * localScale.X(),
			parentScale.Y() * localScale.Y(),
			parentScale.Z() * localScale.Z(),
		},
	}
}
