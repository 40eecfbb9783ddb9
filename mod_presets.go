package arena

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

type EntityData struct {
	ID        EntityId   `json:"id"`
	Name      string     `json:"name,omitempty"`
	Position  mgl32.Vec3 `json:"position"`
	Rotation  mgl32.Quat `json:"rotation"`
	Scale     mgl32.Vec3 `json:"scale"`
	Local     *PoseData  `json:"local,omitempty"`
	HasParent bool       `json:"has_parent"`
	ParentID  EntityId   `json:"parent_id"`

	Mesh      *MeshData          `json:"mesh,omitempty"`
	Material  *MaterialData      `json:"material,omitempty"`
	Light     *LightData         `json:"light,omitempty"`
	RigidBody *RigidBodyData     `json:"rigid_body,omitempty"`
	Collider  *ColliderComponent `json:"collider,omitempty"`
	Groups    *CollisionGroups   `json:"collision_groups,omitempty"`
	Camera    *CameraComponent   `json:"camera,omitempty"`
}

// PoseData is a local transform relative to the parent.
type PoseData struct {
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Quat `json:"rotation"`
	Scale    mgl32.Vec3 `json:"scale"`
}

type MeshData struct {
	Asset    AssetId `json:"asset"`
	Vertices int     `json:"vertices"`
	Indices  int     `json:"indices"`
}

type MaterialData struct {
	Asset       AssetId `json:"asset"`
	BaseColor   Color   `json:"base_color"`
	Texture     string  `json:"texture,omitempty"`
	Reflectance float32 `json:"reflectance"`
	Roughness   float32 `json:"roughness"`
}

type LightData struct {
	Kind        string  `json:"kind"`
	Color       Color   `json:"color"`
	Illuminance float32 `json:"illuminance"`
	Shadows     bool    `json:"shadows"`
}

type RigidBodyData struct {
	Kind         string  `json:"kind"`
	Mass         float32 `json:"mass"`
	GravityScale float32 `json:"gravity_scale"`
	LockRotation bool    `json:"lock_rotation"`
}

type AmbientData struct {
	Color      Color   `json:"color"`
	Brightness float32 `json:"brightness"`
}

type SceneSnapshot struct {
	Ambient  *AmbientData `json:"ambient,omitempty"`
	Entities []EntityData `json:"entities"`
}

// Entity looks an entity up by Name.
func (s SceneSnapshot) Entity(name string) (EntityData, bool) {
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntityData{}, false
}

// SnapshotScene describes every entity that has a TransformComponent, ordered by id.
func SnapshotScene(cmd *Commands) SceneSnapshot {
	server, _ := Resource[AssetServer](cmd.app)

	var snap SceneSnapshot
	if ambient, ok := Resource[AmbientLight](cmd.app); ok {
		snap.Ambient = &AmbientData{Color: ambient.Color, Brightness: ambient.Brightness}
	}

	MakeQuery1[TransformComponent](cmd).Map(func(eid EntityId, tr *TransformComponent) bool {
		data := EntityData{
			ID:       eid,
			Position: tr.Position,
			Rotation: tr.Rotation,
			Scale:    tr.Scale,
		}

		for _, c := range cmd.GetAllComponents(eid) {
			switch comp := c.(type) {
			case Name:
				data.Name = comp.Value
			case LocalTransformComponent:
				data.Local = &PoseData{Position: comp.Position, Rotation: comp.Rotation, Scale: comp.Scale}
			case Parent:
				data.HasParent = true
				data.ParentID = comp.Entity
			case MeshHandle:
				data.Mesh = &MeshData{Asset: comp.Id}
				if server != nil {
					if mesh, ok := server.Mesh(comp); ok {
						data.Mesh.Vertices = mesh.VertexCount()
						data.Mesh.Indices = len(mesh.Indices)
					}
				}
			case MaterialHandle:
				data.Material = &MaterialData{Asset: comp.Id}
				if server != nil {
					if mat, ok := server.Material(comp); ok {
						data.Material.BaseColor = mat.BaseColor
						data.Material.Reflectance = mat.Reflectance
						data.Material.Roughness = mat.PerceptualRoughness
						if mat.BaseColorTexture != nil {
							data.Material.Texture = server.TexturePath(*mat.BaseColorTexture)
						}
					}
				}
			case DirectionalLightComponent:
				data.Light = &LightData{
					Kind:        "directional",
					Color:       comp.Color,
					Illuminance: comp.Illuminance,
					Shadows:     comp.ShadowsEnabled,
				}
			case PointLightComponent:
				data.Light = &LightData{Kind: "point", Color: comp.Color, Illuminance: comp.Intensity}
			case RigidBodyComponent:
				data.RigidBody = &RigidBodyData{
					Kind:         comp.Kind.String(),
					Mass:         comp.Mass,
					GravityScale: comp.GravityScale,
					LockRotation: comp.LockRotation,
				}
			case ColliderComponent:
				col := comp
				data.Collider = &col
			case CollisionGroups:
				groups := comp
				data.Groups = &groups
			case CameraComponent:
				cam := comp
				data.Camera = &cam
			}
		}

		snap.Entities = append(snap.Entities, data)
		return true
	})

	sort.Slice(snap.Entities, func(i, j int) bool { return snap.Entities[i].ID < snap.Entities[j].ID })
	return snap
}

func SaveSceneSnapshot(cmd *Commands, filename string) error {
	bytes, err := json.MarshalIndent(SnapshotScene(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene snapshot: %w", err)
	}
	if err := os.WriteFile(filename, bytes, 0644); err != nil {
		return fmt.Errorf("write scene snapshot: %w", err)
	}
	return nil
}

// LoadSceneSnapshot respawns the entities of a snapshot file with their transforms, names,
// hierarchy, lights and physics. Meshes and materials are not restored.
func LoadSceneSnapshot(cmd *Commands, filename string) ([]EntityId, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read scene snapshot: %w", err)
	}

	var snap SceneSnapshot
	if err := json.Unmarshal(bytes, &snap); err != nil {
		return nil, fmt.Errorf("decode scene snapshot: %w", err)
	}

	idMap := make(map[EntityId]EntityId)
	var newEntities []EntityId

	for _, data := range snap.Entities {
		components := []any{&TransformComponent{
			Position: data.Position,
			Rotation: data.Rotation,
			Scale:    data.Scale,
		}}
		if data.Local != nil {
			components = append(components, &LocalTransformComponent{
				Position: data.Local.Position,
				Rotation: data.Local.Rotation,
				Scale:    data.Local.Scale,
			})
		}
		if data.Name != "" {
			components = append(components, &Name{Value: data.Name})
		}
		if data.Light != nil && data.Light.Kind == "directional" {
			components = append(components, &DirectionalLightComponent{
				Color:          data.Light.Color,
				Illuminance:    data.Light.Illuminance,
				ShadowsEnabled: data.Light.Shadows,
			})
		}
		if data.RigidBody != nil {
			components = append(components, &RigidBodyComponent{
				Kind:         parseRigidBodyKind(data.RigidBody.Kind),
				Mass:         data.RigidBody.Mass,
				GravityScale: data.RigidBody.GravityScale,
				LockRotation: data.RigidBody.LockRotation,
			})
		}
		if data.Collider != nil {
			col := *data.Collider
			components = append(components, &col)
		}
		if data.Groups != nil {
			groups := *data.Groups
			components = append(components, &groups)
		}
		if data.Camera != nil {
			cam := *data.Camera
			components = append(components, &cam)
		}

		newEid := cmd.AddEntity(components...)
		idMap[data.ID] = newEid
		newEntities = append(newEntities, newEid)
	}

	for _, data := range snap.Entities {
		if !data.HasParent {
			continue
		}
		newChild, okC := idMap[data.ID]
		newParent, okP := idMap[data.ParentID]
		if okC && okP {
			cmd.AddComponents(newChild, &Parent{Entity: newParent})
		}
	}

	return newEntities, nil
}

func parseRigidBodyKind(s string) RigidBodyKind {
	for _, k := range []RigidBodyKind{RigidBodyFixed, RigidBodyDynamic, RigidBodyKinematicPosition} {
		if k.String() == s {
			return k
		}
	}
	return RigidBodyFixed
}
