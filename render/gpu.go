// Package render draws the arena scene with wgpu into the platform window.
package render

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/platform"
)

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
}

const depthFormat = wgpu.TextureFormatDepth24Plus

func createGpuState(ws *platform.WindowState) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(ws.Glfw()))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Arena Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface has no usable format")
	}
	width, height := ws.Glfw().GetFramebufferSize()
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	g := &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         device.GetQueue(),
		surfaceConfig: &surfaceConfig,
	}
	if err := g.createDepth(); err != nil {
		return nil, err
	}
	return g, nil
}

// createDepth (re)creates the depth attachment at the swapchain size.
func (g *GpuState) createDepth() error {
	g.releaseDepth()
	texture, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth",
		Size: wgpu.Extent3D{
			Width:              g.surfaceConfig.Width,
			Height:             g.surfaceConfig.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("create depth view: %w", err)
	}
	g.depthTexture = texture
	g.depthView = view
	return nil
}

func (g *GpuState) releaseDepth() {
	if g.depthView != nil {
		g.depthView.Release()
		g.depthView = nil
	}
	if g.depthTexture != nil {
		g.depthTexture.Release()
		g.depthTexture = nil
	}
}

// resize reconfigures the swapchain and depth attachment when the framebuffer changed. Minimized windows report 0x0 and are skipped.
func (g *GpuState) resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if uint32(width) == g.surfaceConfig.Width && uint32(height) == g.surfaceConfig.Height {
		return true
	}
	g.surfaceConfig.Width = uint32(width)
	g.surfaceConfig.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
	return g.createDepth() == nil
}

func (g *GpuState) aspect() float32 {
	if g.surfaceConfig.Height == 0 {
		return 1
	}
	return float32(g.surfaceConfig.Width) / float32(g.surfaceConfig.Height)
}

type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	version uint
}

func (t *gpuTexture) release() {
	t.sampler.Release()
	t.view.Release()
	t.texture.Release()
}

func createTexture(tex *arena.TextureAsset, g *GpuState) (*gpuTexture, error) {
	extent := wgpu.Extent3D{
		Width:              tex.Width,
		Height:             tex.Height,
		DepthOrArrayLayers: 1,
	}
	format := textureFormat(tex.Format)
	texture, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         tex.Path,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", tex.Path, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("create texture view %s: %w", tex.Path, err)
	}

	err = g.queue.WriteTexture(
		texture.AsImageCopy(),
		wgpu.ToBytes(tex.Texels),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  tex.Width * bytesPerPixel(tex.Format),
			RowsPerImage: tex.Height,
		},
		&extent,
	)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, fmt.Errorf("upload texture %s: %w", tex.Path, err)
	}

	sampler, err := createSampler(tex.Sampler, g)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, err
	}

	return &gpuTexture{texture: texture, view: view, sampler: sampler, version: tex.Version}, nil
}

func createSampler(desc arena.SamplerDescriptor, g *GpuState) (*wgpu.Sampler, error) {
	sampler, err := g.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  addressMode(desc.AddressModeU),
		AddressModeV:  addressMode(desc.AddressModeV),
		AddressModeW:  addressMode(desc.AddressModeW),
		MagFilter:     filterMode(desc.MagFilter),
		MinFilter:     filterMode(desc.MinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	return sampler, nil
}

func addressMode(m arena.AddressMode) wgpu.AddressMode {
	switch m {
	case arena.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case arena.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeClampToEdge
}

func filterMode(m arena.FilterMode) wgpu.FilterMode {
	if m == arena.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func textureFormat(f arena.TextureFormat) wgpu.TextureFormat {
	switch f {
	case arena.TextureFormatR8Uint:
		return wgpu.TextureFormatR8Uint
	case arena.TextureFormatRGBA8Uint:
		return wgpu.TextureFormatRGBA8Uint
	}
	return wgpu.TextureFormatRGBA8Unorm
}

func bytesPerPixel(f arena.TextureFormat) uint32 {
	if f == arena.TextureFormatR8Uint {
		return 1
	}
	return 4
}

// vertex is the interleaved layout consumed by meshShader.
type vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(unsafe.Sizeof(vertex{})),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	},
}

// packVertices interleaves the mesh attributes. Missing normals point up and missing UVs are zero.
func packVertices(mesh *arena.MeshAsset) []vertex {
	out := make([]vertex, mesh.VertexCount())
	for i, p := range mesh.Positions {
		out[i].Position = p
		out[i].Normal = [3]float32{0, 1, 0}
		if i < len(mesh.Normals) {
			out[i].Normal = mesh.Normals[i]
		}
		if i < len(mesh.UVs) {
			out[i].UV = mesh.UVs[i]
		}
	}
	return out
}

type gpuMesh struct {
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	indexCount uint32
}

func (m *gpuMesh) release() {
	m.vertexBuf.Release()
	m.indexBuf.Release()
}

func createMesh(mesh *arena.MeshAsset, g *GpuState) (*gpuMesh, error) {
	if mesh.VertexCount() == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("empty mesh")
	}
	vertexBuf, err := g.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer",
		Contents: wgpu.ToBytes(packVertices(mesh)),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	indexBuf, err := g.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer",
		Contents: wgpu.ToBytes(mesh.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertexBuf.Release()
		return nil, fmt.Errorf("create index buffer: %w", err)
	}
	return &gpuMesh{vertexBuf: vertexBuf, indexBuf: indexBuf, indexCount: uint32(len(mesh.Indices))}, nil
}

// clearColor is the ambient light scaled by its brightness relative to the default, clamped to [0,1].
func clearColor(ambient *arena.AmbientLight) wgpu.Color {
	if ambient == nil {
		return wgpu.Color{R: 0, G: 0, B: 0, A: 1}
	}
	k := ambient.Brightness / arena.DefaultAmbientBrightness * 0.05
	c := ambient.Color.Scaled(k)
	clamp := func(v float32) float64 {
		return math.Min(1, math.Max(0, float64(v)))
	}
	return wgpu.Color{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: 1}
}
