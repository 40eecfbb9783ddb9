package render

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/platform"
	"github.com/go-gl/mathgl/mgl32"
)

const rendererName = "wgpu-forward"

// Module draws every entity with a mesh, material and transform. It needs platform.WindowModule.
type Module struct{}

func (Module) Install(app *arena.App, cmd *arena.Commands) {
	arena.ClaimRenderer(app, rendererName)

	ws, ok := arena.Resource[platform.WindowState](app)
	if !ok {
		panic("render.Module requires platform.WindowModule")
	}
	gpu, err := createGpuState(ws)
	if err != nil {
		app.Logger().Errorf("gpu: %v", err)
		panic(err)
	}
	renderer, err := newRenderer(gpu)
	if err != nil {
		app.Logger().Errorf("renderer: %v", err)
		panic(err)
	}
	cmd.AddResources(gpu, renderer)

	app.UseSystem(
		arena.System(UploadSystem).
			InStage(arena.PreRender).
			RunAlways(),
	)
	app.UseSystem(
		arena.System(DrawSystem).
			InStage(arena.Render).
			RunAlways(),
	)
}

type drawUniforms struct {
	ViewProj   mgl32.Mat4
	Model      mgl32.Mat4
	BaseColor  [4]float32
	LightDir   [4]float32
	LightColor [4]float32
	Ambient    [4]float32
}

type drawable struct {
	uniform    *wgpu.Buffer
	bindGroup  *wgpu.BindGroup
	texture    arena.AssetId
	texVersion uint
}

func (d *drawable) release() {
	if d.bindGroup != nil {
		d.bindGroup.Release()
	}
	d.uniform.Release()
}

type Renderer struct {
	pipeline *wgpu.RenderPipeline
	white    *gpuTexture
	textures map[arena.AssetId]*gpuTexture
	meshes   map[arena.AssetId]*gpuMesh
	draws    map[arena.EntityId]*drawable
	failed   map[arena.AssetId]bool
}

func newRenderer(g *GpuState) (*Renderer, error) {
	shader, err := g.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "mesh",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: meshShader},
	})
	if err != nil {
		return nil, fmt.Errorf("compile mesh shader: %w", err)
	}
	defer shader.Release()

	pipeline, err := g.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "mesh",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    g.surfaceConfig.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create mesh pipeline: %w", err)
	}

	white, err := createTexture(&arena.TextureAsset{
		Path:    "white",
		Texels:  []uint8{255, 255, 255, 255},
		Width:   1,
		Height:  1,
		Format:  arena.TextureFormatRGBA8Unorm,
		Sampler: arena.DefaultSampler(),
	}, g)
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	return &Renderer{
		pipeline: pipeline,
		white:    white,
		textures: make(map[arena.AssetId]*gpuTexture),
		meshes:   make(map[arena.AssetId]*gpuMesh),
		draws:    make(map[arena.EntityId]*drawable),
		failed:   make(map[arena.AssetId]bool),
	}, nil
}

// UploadSystem creates GPU copies of meshes once and of textures whenever their version changes.
func UploadSystem(assets *arena.AssetServer, r *Renderer, g *GpuState, log arena.Logger) {
	assets.ForEachTexture(func(h arena.TextureHandle, tex *arena.TextureAsset) {
		current, ok := r.textures[h.Id]
		if ok && current.version == tex.Version {
			return
		}
		created, err := createTexture(tex, g)
		if err != nil {
			log.Warnf("upload texture %s: %v", tex.Path, err)
			return
		}
		if ok {
			current.release()
		}
		r.textures[h.Id] = created
		log.Debugf("uploaded texture %s (%dx%d, %s/%s)", tex.Path, tex.Width, tex.Height,
			tex.Sampler.AddressModeU, tex.Sampler.AddressModeV)
	})

	assets.ForEachMesh(func(h arena.MeshHandle, mesh *arena.MeshAsset) {
		if _, ok := r.meshes[h.Id]; ok || r.failed[h.Id] {
			return
		}
		created, err := createMesh(mesh, g)
		if err != nil {
			r.failed[h.Id] = true
			log.Warnf("upload mesh %s: %v", h.Id, err)
			return
		}
		r.meshes[h.Id] = created
	})
}

type drawItem struct {
	eid   arena.EntityId
	mesh  *gpuMesh
	model mgl32.Mat4
	mat   arena.StandardMaterial
}

func DrawSystem(cmd *arena.Commands, g *GpuState, r *Renderer, ws *platform.WindowState, ambient *arena.AmbientLight, assets *arena.AssetServer, log arena.Logger) {
	if !g.resize(ws.Glfw().GetFramebufferSize()) {
		return
	}

	viewProj := cameraMatrices(cmd, g.aspect())
	lightDir, lightColor := sunLight(cmd)
	ambientColor := ambient.Color.Scaled(ambient.Brightness / arena.DefaultAmbientBrightness * 0.1)

	var items []drawItem
	seen := make(map[arena.EntityId]bool)
	arena.MakeQuery3[arena.TransformComponent, arena.MeshHandle, arena.MaterialHandle](cmd).Map(
		func(eid arena.EntityId, tr *arena.TransformComponent, mh *arena.MeshHandle, matH *arena.MaterialHandle) bool {
			mesh, ok := r.meshes[mh.Id]
			if !ok {
				return true
			}
			mat, ok := assets.Material(*matH)
			if !ok {
				mat = arena.DefaultStandardMaterial()
			}
			seen[eid] = true
			items = append(items, drawItem{
				eid:   eid,
				mesh:  mesh,
				model: tr.Mat4(),
				mat:   mat,
			})
			return true
		})

	for eid, d := range r.draws {
		if !seen[eid] {
			d.release()
			delete(r.draws, eid)
		}
	}

	nextTexture, err := g.surface.GetCurrentTexture()
	if err != nil {
		log.Warnf("get surface texture: %v", err)
		return
	}
	defer nextTexture.Release()
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		log.Warnf("create surface view: %v", err)
		return
	}
	defer view.Release()

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		log.Warnf("create command encoder: %v", err)
		return
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearColor(ambient),
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            g.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	defer renderPass.Release()

	renderPass.SetPipeline(r.pipeline)
	for _, item := range items {
		d, err := r.drawableFor(item, g)
		if err != nil {
			log.Warnf("entity %d: %v", item.eid, err)
			continue
		}
		u := drawUniforms{
			ViewProj:   viewProj,
			Model:      item.model,
			BaseColor:  [4]float32{item.mat.BaseColor.R, item.mat.BaseColor.G, item.mat.BaseColor.B, item.mat.BaseColor.A},
			LightDir:   lightDir,
			LightColor: lightColor,
			Ambient:    [4]float32{ambientColor.R, ambientColor.G, ambientColor.B, 1},
		}
		if err := g.queue.WriteBuffer(d.uniform, 0, unsafe.Slice((*byte)(unsafe.Pointer(&u)), unsafe.Sizeof(u))); err != nil {
			log.Warnf("write uniforms: %v", err)
			continue
		}
		renderPass.SetBindGroup(0, d.bindGroup, nil)
		renderPass.SetVertexBuffer(0, item.mesh.vertexBuf, 0, wgpu.WholeSize)
		renderPass.SetIndexBuffer(item.mesh.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		renderPass.DrawIndexed(item.mesh.indexCount, 1, 0, 0, 0)
	}

	if err := renderPass.End(); err != nil {
		log.Warnf("end render pass: %v", err)
		return
	}
	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		log.Warnf("finish encoder: %v", err)
		return
	}
	defer cmdBuffer.Release()
	g.queue.Submit(cmdBuffer)
	g.surface.Present()
}

// drawableFor returns the entity's uniform buffer and bind group, rebuilding the bind group
// when its texture was replaced.
func (r *Renderer) drawableFor(item drawItem, g *GpuState) (*drawable, error) {
	tex := r.white
	var texId arena.AssetId
	if item.mat.BaseColorTexture != nil {
		if loaded, ok := r.textures[item.mat.BaseColorTexture.Id]; ok {
			tex, texId = loaded, item.mat.BaseColorTexture.Id
		}
	}

	d, ok := r.draws[item.eid]
	if !ok {
		uniform, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "draw uniforms",
			Size:  uint64(unsafe.Sizeof(drawUniforms{})),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("create uniform buffer: %w", err)
		}
		d = &drawable{uniform: uniform}
		r.draws[item.eid] = d
	}

	if d.bindGroup != nil && d.texture == texId && d.texVersion == tex.version {
		return d, nil
	}
	if d.bindGroup != nil {
		d.bindGroup.Release()
		d.bindGroup = nil
	}

	layout := r.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	bindGroup, err := g.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.uniform, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: tex.view, Size: wgpu.WholeSize},
			{Binding: 2, Sampler: tex.sampler, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	d.bindGroup = bindGroup
	d.texture = texId
	d.texVersion = tex.version
	return d, nil
}

func cameraMatrices(cmd *arena.Commands, aspect float32) mgl32.Mat4 {
	_, cam := arena.ActiveCamera(cmd)
	if cam == nil {
		fallback := arena.NewCamera()
		fallback.Position = mgl32.Vec3{0, 5, 15}
		fallback.LookAt = mgl32.Vec3{}
		cam = &fallback
	}
	return cam.ProjectionMatrix(aspect).Mul4(cam.ViewMatrix())
}

// sunLight packs the first directional light: direction with illuminance weight in w, and color.
func sunLight(cmd *arena.Commands) ([4]float32, [4]float32) {
	dir := [4]float32{0, -1, 0, 0}
	color := [4]float32{}
	arena.MakeQuery2[arena.DirectionalLightComponent, arena.TransformComponent](cmd).Map(
		func(eid arena.EntityId, light *arena.DirectionalLightComponent, tr *arena.TransformComponent) bool {
			f := tr.Forward()
			dir = [4]float32{f.X(), f.Y(), f.Z(), min(light.Illuminance/1000, 4)}
			color = [4]float32{light.Color.R, light.Color.G, light.Color.B, 1}
			return false
		})
	return dir, color
}
