package arena

// AmbientLight is the global fill light resource.
type AmbientLight struct {
	Color      Color
	Brightness float32
}

const DefaultAmbientBrightness = 80.0

// DirectionalLightComponent shines along the entity's forward (-Z) axis.
// Illuminance is in lux.
type DirectionalLightComponent struct {
	Color           Color
	Illuminance     float32
	ShadowsEnabled  bool
	ShadowDepthBias float32
}

func DefaultDirectionalLight() DirectionalLightComponent {
	return DirectionalLightComponent{
		Color:           White,
		Illuminance:     10000,
		ShadowDepthBias: 0.02,
	}
}

// PointLightComponent emits from the entity's position. Intensity is in lumens.
type PointLightComponent struct {
	Color     Color
	Intensity float32
	Range     float32
}

func DirectionalLightBundle(light DirectionalLightComponent, transform TransformComponent) []any {
	return []any{&light, &transform}
}

type LightingModule struct{}

func (LightingModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&AmbientLight{
		Color:      White,
		Brightness: DefaultAmbientBrightness,
	})
}
