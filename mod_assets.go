package arena

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type AssetId string

type MeshHandle struct {
	Id AssetId
}

type MaterialHandle struct {
	Id AssetId
}

type TextureHandle struct {
	Id AssetId
}

type TextureFormat uint32

const (
	TextureFormatR8Uint     TextureFormat = 0x00000003
	TextureFormatRGBA8Unorm TextureFormat = 0x00000012
	TextureFormatRGBA8Uint  TextureFormat = 0x00000015
)

type LoadState int

const (
	LoadStateNotLoaded LoadState = iota
	LoadStateLoading
	LoadStateLoaded
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateNotLoaded:
		return "not-loaded"
	case LoadStateLoading:
		return "loading"
	case LoadStateLoaded:
		return "loaded"
	case LoadStateFailed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// TextureAsset holds decoded texels. Version grows every time the texels change.
type TextureAsset struct {
	Path    string
	Texels  []uint8
	Width   uint32
	Height  uint32
	Format  TextureFormat
	Sampler SamplerDescriptor
	Version uint
}

type textureEntry struct {
	state LoadState
	err   error
	asset TextureAsset
}

type textureKey struct {
	path    string
	sampler SamplerDescriptor
}

type loadResult struct {
	id     AssetId
	texels []uint8
	width  uint32
	height uint32
	err    error
}

// AssetServer owns every mesh, material and texture of the app. Texture decoding
// happens off the main loop; results become visible once AssetLoadSystem or Sync applies them.
type AssetServer struct {
	root string
	log  Logger

	meshes    map[AssetId]MeshAsset
	materials map[AssetId]StandardMaterial
	textures  map[AssetId]*textureEntry
	byKey     map[textureKey]AssetId

	mu       sync.Mutex
	done     []loadResult
	inflight sync.WaitGroup
	pending  int
}

// AssetServerModule installs the AssetServer. Root is prepended to relative texture paths.
type AssetServerModule struct {
	Root string
}

func (m AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer(m.Root, app.Logger()))
	app.UseSystem(
		System(AssetLoadSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func NewAssetServer(root string, logger Logger) *AssetServer {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &AssetServer{
		root:      root,
		log:       logger,
		meshes:    make(map[AssetId]MeshAsset),
		materials: make(map[AssetId]StandardMaterial),
		textures:  make(map[AssetId]*textureEntry),
		byKey:     make(map[textureKey]AssetId),
	}
}

func (server *AssetServer) Root() string {
	return server.root
}

func (server *AssetServer) AddMesh(mesh MeshAsset) MeshHandle {
	id := makeAssetId()
	server.meshes[id] = mesh
	return MeshHandle{Id: id}
}

func (server *AssetServer) AddMaterial(material StandardMaterial) MaterialHandle {
	id := makeAssetId()
	server.materials[id] = material
	return MaterialHandle{Id: id}
}

func (server *AssetServer) Mesh(h MeshHandle) (MeshAsset, bool) {
	mesh, ok := server.meshes[h.Id]
	return mesh, ok
}

func (server *AssetServer) Material(h MaterialHandle) (StandardMaterial, bool) {
	mat, ok := server.materials[h.Id]
	return mat, ok
}

// Texture returns the texture only once it is loaded.
func (server *AssetServer) Texture(h TextureHandle) (TextureAsset, bool) {
	entry, ok := server.textures[h.Id]
	if !ok || entry.state != LoadStateLoaded {
		return TextureAsset{}, false
	}
	return entry.asset, true
}

// CreateTexture registers texels that are already in memory.
func (server *AssetServer) CreateTexture(texels []uint8, width uint32, height uint32, format TextureFormat, sampler SamplerDescriptor) TextureHandle {
	id := makeAssetId()
	server.textures[id] = &textureEntry{
		state: LoadStateLoaded,
		asset: TextureAsset{
			Texels:  texels,
			Width:   width,
			Height:  height,
			Format:  format,
			Sampler: sampler,
			Version: 1,
		},
	}
	return TextureHandle{Id: id}
}

// LoadTexture returns a handle right away and decodes the file in the background.
// Requesting the same path with the same sampler twice returns the same handle.
func (server *AssetServer) LoadTexture(path string, opts ...TextureOption) TextureHandle {
	req := textureRequest{sampler: DefaultSampler()}
	for _, opt := range opts {
		opt(&req)
	}

	key := textureKey{path: filepath.Clean(path), sampler: req.sampler}
	if id, ok := server.byKey[key]; ok {
		return TextureHandle{Id: id}
	}

	id := makeAssetId()
	server.byKey[key] = id
	server.textures[id] = &textureEntry{
		state: LoadStateLoading,
		asset: TextureAsset{
			Path:    key.path,
			Format:  TextureFormatRGBA8Unorm,
			Sampler: req.sampler,
		},
	}

	fullPath := server.resolve(key.path)
	server.mu.Lock()
	server.pending++
	server.mu.Unlock()
	server.inflight.Add(1)
	go func() {
		defer server.inflight.Done()
		res := decodeTexture(fullPath)
		res.id = id

		server.mu.Lock()
		server.done = append(server.done, res)
		server.mu.Unlock()
	}()

	server.log.Debugf("loading texture %s (%s/%s)", fullPath, req.sampler.AddressModeU, req.sampler.AddressModeV)
	return TextureHandle{Id: id}
}

// TexturePath is the requested path of a loaded-from-disk texture, empty otherwise.
func (server *AssetServer) TexturePath(h TextureHandle) string {
	if entry, ok := server.textures[h.Id]; ok {
		return entry.asset.Path
	}
	return ""
}

func (server *AssetServer) LoadState(h TextureHandle) LoadState {
	entry, ok := server.textures[h.Id]
	if !ok {
		return LoadStateNotLoaded
	}
	return entry.state
}

// LoadError returns why a texture failed, ErrAssetNotFound for unknown handles, or nil.
func (server *AssetServer) LoadError(h TextureHandle) error {
	entry, ok := server.textures[h.Id]
	if !ok {
		return ErrAssetNotFound
	}
	return entry.err
}

// PendingLoads counts requested textures whose result has not been applied yet.
func (server *AssetServer) PendingLoads() int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.pending
}

// Sync blocks until every in-flight load finished, then applies the results.
func (server *AssetServer) Sync(ctx context.Context) error {
	waited := make(chan struct{})
	go func() {
		server.inflight.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-ctx.Done():
		return ctx.Err()
	}
	server.applyLoaded()
	return nil
}

func (server *AssetServer) ForEachMesh(fn func(MeshHandle, *MeshAsset)) {
	for id, mesh := range server.meshes {
		fn(MeshHandle{Id: id}, &mesh)
	}
}

// ForEachTexture visits loaded textures only.
func (server *AssetServer) ForEachTexture(fn func(TextureHandle, *TextureAsset)) {
	for id, entry := range server.textures {
		if entry.state != LoadStateLoaded {
			continue
		}
		fn(TextureHandle{Id: id}, &entry.asset)
	}
}

func (server *AssetServer) applyLoaded() int {
	server.mu.Lock()
	results := server.done
	server.done = nil
	server.pending -= len(results)
	server.mu.Unlock()

	for _, res := range results {
		entry, ok := server.textures[res.id]
		if !ok {
			continue
		}
		if res.err != nil {
			entry.state = LoadStateFailed
			entry.err = res.err
			server.log.Warnf("texture %s failed to load: %v", entry.asset.Path, res.err)
			continue
		}
		entry.state = LoadStateLoaded
		entry.asset.Texels = res.texels
		entry.asset.Width = res.width
		entry.asset.Height = res.height
		entry.asset.Version++
		server.log.Debugf("texture %s loaded (%dx%d)", entry.asset.Path, res.width, res.height)
	}
	return len(results)
}

func (server *AssetServer) resolve(path string) string {
	if filepath.IsAbs(path) || server.root == "" {
		return path
	}
	return filepath.Join(server.root, path)
}

// AssetLoadSystem publishes textures decoded since the last frame.
func AssetLoadSystem(assets *AssetServer) {
	assets.applyLoaded()
}

func decodeTexture(path string) loadResult {
	file, err := os.Open(path)
	if err != nil {
		return loadResult{err: fmt.Errorf("open texture: %w", err)}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return loadResult{err: fmt.Errorf("decode texture %s: %w", path, err)}
	}

	bounds := img.Bounds()
	rgbaImg, ok := img.(*image.RGBA)
	if !ok || rgbaImg.Stride != 4*bounds.Dx() {
		rgbaImg = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgbaImg, rgbaImg.Bounds(), img, bounds.Min, draw.Src)
	}

	return loadResult{
		texels: rgbaImg.Pix,
		width:  uint32(bounds.Dx()),
		height: uint32(bounds.Dy()),
	}
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
