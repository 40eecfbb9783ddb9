package arena

type AddressMode uint32

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

func (m AddressMode) String() string {
	switch m {
	case AddressModeClampToEdge:
		return "clamp-to-edge"
	case AddressModeRepeat:
		return "repeat"
	case AddressModeMirrorRepeat:
		return "mirror-repeat"
	}
	return "unknown"
}

type FilterMode uint32

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

type SamplerDescriptor struct {
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
}

// DefaultSampler clamps on every axis and filters linearly.
func DefaultSampler() SamplerDescriptor {
	return SamplerDescriptor{
		MagFilter:    FilterModeLinear,
		MinFilter:    FilterModeLinear,
		MipmapFilter: FilterModeLinear,
	}
}

// RepeatSampler tiles in U and V.
func RepeatSampler() SamplerDescriptor {
	s := DefaultSampler()
	s.AddressModeU = AddressModeRepeat
	s.AddressModeV = AddressModeRepeat
	return s
}

type TextureOption func(*textureRequest)

type textureRequest struct {
	sampler SamplerDescriptor
}

func WithSampler(desc SamplerDescriptor) TextureOption {
	return func(r *textureRequest) {
		r.sampler = desc
	}
}

// WithRepeat switches U and V addressing to repeat, keeping filters.
func WithRepeat() TextureOption {
	return func(r *textureRequest) {
		r.sampler.AddressModeU = AddressModeRepeat
		r.sampler.AddressModeV = AddressModeRepeat
	}
}
