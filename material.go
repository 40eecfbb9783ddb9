package arena

// StandardMaterial is a physically based surface description.
type StandardMaterial struct {
	BaseColor           Color
	BaseColorTexture    *TextureHandle
	Reflectance         float32
	PerceptualRoughness float32
	Metallic            float32
	Unlit               bool
}

func DefaultStandardMaterial() StandardMaterial {
	return StandardMaterial{
		BaseColor:           White,
		Reflectance:         0.5,
		PerceptualRoughness: 0.5,
	}
}

// ColoredMaterial is the default material tinted with c.
func ColoredMaterial(c Color) StandardMaterial {
	mat := DefaultStandardMaterial()
	mat.BaseColor = c
	return mat
}

// TexturedMaterial is a white default material sampling tex.
func TexturedMaterial(tex TextureHandle) StandardMaterial {
	mat := DefaultStandardMaterial()
	mat.BaseColorTexture = &tex
	return mat
}
