package arena

import (
	"reflect"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type position struct {
	X, Y, Z float32
}

type velocity struct {
	X, Y, Z float32
}

type tag struct{}

func newTestCommands() *Commands {
	ecs := MakeEcs()
	return &Commands{app: &App{ecs: &ecs, resources: make(map[reflect.Type]any)}}
}

func frameTime(dt time.Duration) *Time {
	return &Time{Dt: dt}
}

// vecNear compares by absolute distance. ApproxEqualThreshold is relative and
// degenerates to eps*eps when a component is zero.
func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
