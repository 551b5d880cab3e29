package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/smoothie/engine/camera"
	"github.com/Carmen-Shannon/smoothie/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/smoothie/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/smoothie/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/primitive.wgsl
var primitiveSource string

// PrimitivePipelineKey is the key of the single pipeline drawing element meshes.
const PrimitivePipelineKey = "primitive"

const (
	globalsBinding    = 0
	primitivesBinding = 1
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Frame state between DrawFrame and Present
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	pipeline          pipeline.Pipeline
	bindings          bind_group_provider.BindGroupProvider
	mesh              bind_group_provider.BindGroupProvider
	primitiveCapacity int

	// Allocated sizes of the mesh buffers, grown on demand and reused otherwise.
	vertexCapacity uint64
	indexCapacity  uint64
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter and device. The calling
// goroutine is locked to its OS thread since the surface belongs to the window thread.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, primitiveCapacity int) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer: window has no surface descriptor")
	}
	runtime.LockOSThread()

	vs := shader.NewShader("primitive_vs", shader.ShaderTypeVertex, camera.GlobalsSource+primitiveSource)
	fs := shader.NewShader("primitive_fs", shader.ShaderTypeFragment, camera.GlobalsSource+primitiveSource)

	b := &wgpuRendererBackendImpl{
		mu:                &sync.Mutex{},
		instance:          wgpu.CreateInstance(nil),
		presentMode:       wgpu.PresentModeFifo,
		sampleCount:       sampleCount,
		primitiveCapacity: primitiveCapacity,
		pipeline: pipeline.NewPipeline(PrimitivePipelineKey,
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
		),
		bindings: bind_group_provider.NewBindGroupProvider("Primitive Bindings"),
		mesh:     bind_group_provider.NewBindGroupProvider("Element Mesh"),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("renderer: surface reports no formats")
	}
	if b.surfaceFormat == nil {
		b.surfaceFormat = &capabilities.Formats[0]
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return classifyDeviceError(err)
		}
		view, err := msaaTexture.CreateView(nil)
		if err != nil {
			msaaTexture.Release()
			return classifyDeviceError(err)
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView = view
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set per frame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
				ClearValue: wgpu.Color{
					R: 1, G: 1, B: 1, A: 1,
				},
			},
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) DrawFrame(f *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("renderer: DrawFrame before ConfigureSurface")
	}
	if b.frameSurface != nil {
		return errors.New("renderer: previous frame not yet presented")
	}

	if b.pipeline.RenderPipeline() == nil {
		if err := b.registerRenderPipeline(b.pipeline); err != nil {
			return fmt.Errorf("register %s pipeline: %w", b.pipeline.PipelineKey(), err)
		}
	}
	if b.bindings.BindGroup() == nil {
		desc := mergeBindGroupLayouts(
			b.pipeline.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptors(),
			b.pipeline.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptors(),
		)[0]
		b.bindings.SetBindGroupLayout(b.pipeline.BindGroupLayout(0))
		err := b.initBindGroup(b.bindings, desc, map[int]uint64{
			globalsBinding:    uint64(f.Globals.Size()),
			primitivesBinding: uint64(b.primitiveCapacity * DefaultPrimitive.Size()),
		})
		if err != nil {
			return err
		}
	}

	if f.MeshChanged {
		if err := b.initMeshBuffers(b.mesh, f.Mesh.VertexBytes(), f.Mesh.IndexBytes(), len(f.Mesh.Indices)); err != nil {
			return err
		}
	}

	b.writeBuffers([]bind_group_provider.BufferWrite{
		{Provider: b.bindings, Binding: globalsBinding, Data: f.Globals.Marshal()},
		{Provider: b.bindings, Binding: primitivesBinding, Data: f.Primitives.Bytes()},
	})

	clearColor := f.ClearColor.Clamped()
	b.renderPassDescriptor.ColorAttachments[0].ClearValue = wgpu.Color{
		R: clearColor.R, G: clearColor.G, B: clearColor.B, A: 1,
	}

	encoder, pass, err := b.beginFrame()
	if err != nil {
		return err
	}
	if b.mesh.IndexCount() > 0 {
		b.drawCall(pass, b.pipeline, b.mesh, []bind_group_provider.BindGroupProvider{b.bindings})
	}
	return b.endFrame(encoder, pass)
}

// registerRenderPipeline creates the shader modules, bind group layouts, pipeline layout
// and render pipeline for p. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) registerRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return err
	}
	defer fs.Release()

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created, bindGroupLayouts)
	return nil
}

// initMeshBuffers uploads mesh data, reusing the existing buffers when they are large
// enough. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) initMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if len(vertexData) > 0 {
		if provider.VertexBuffer() == nil || uint64(len(vertexData)) > b.vertexCapacity {
			size := growSize(b.vertexCapacity, uint64(len(vertexData)))
			buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Vertex Buffer",
				Size:  size,
				Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return classifyDeviceError(err)
			}
			provider.SetVertexBuffer(buf)
			b.vertexCapacity = size
		}
		b.queue.WriteBuffer(provider.VertexBuffer(), 0, vertexData)
	}

	if len(indexData) > 0 {
		if provider.IndexBuffer() == nil || uint64(len(indexData)) > b.indexCapacity {
			size := growSize(b.indexCapacity, uint64(len(indexData)))
			buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Index Buffer",
				Size:  size,
				Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return classifyDeviceError(err)
			}
			provider.SetIndexBuffer(buf)
			b.indexCapacity = size
		}
		b.queue.WriteBuffer(provider.IndexBuffer(), 0, indexData)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

// initBindGroup creates the buffers and bind group described by descriptor and stores them
// on provider. The provider's layout is used when set. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) initBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		var usage wgpu.BufferUsage
		switch entry.Buffer.Type {
		case wgpu.BufferBindingTypeUniform:
			usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
		case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		default:
			return fmt.Errorf("binding %d is not a buffer binding", binding)
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				return classifyDeviceError(err)
			}
			provider.SetBuffer(binding, buf)
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// writeBuffers writes staged data to the GPU queue. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil || len(w.Data) == 0 {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

// beginFrame acquires the swapchain texture and begins the main render pass.
// Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) beginFrame() (*wgpu.CommandEncoder, *wgpu.RenderPassEncoder, error) {
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, nil, fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, nil, classifyDeviceError(err)
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	return encoder, encoder.BeginRenderPass(b.renderPassDescriptor), nil
}

// drawCall encodes one indexed draw within pass. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) drawCall(
	pass *wgpu.RenderPassEncoder,
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	pass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
}

// endFrame ends the pass and submits the command buffer. The swapchain texture stays
// acquired until Present. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) endFrame(encoder *wgpu.CommandEncoder, pass *wgpu.RenderPassEncoder) error {
	defer encoder.Release()

	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		b.releaseFrame()
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return nil
	}
	b.surface.Present()
	b.releaseFrame()
	return nil
}

func (b *wgpuRendererBackendImpl) Capture() (image.Image, error) {
	return nil, ErrCaptureUnsupported
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	b.mesh.Release()
	b.bindings.Release()
	b.pipeline.Release()
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// releaseFrame drops the acquired swapchain texture and view. Callers must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// classifyDeviceError maps allocation failures to ErrOutOfMemory.
func classifyDeviceError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "out of memory") {
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	return err
}

// growSize returns the next buffer size able to hold need bytes, doubling from current
// and rounded up to 4 bytes as WriteBuffer requires.
func growSize(current, need uint64) uint64 {
	size := max(current, 1024)
	for size < need {
		size *= 2
	}
	return (size + 3) &^ 3
}

// mergeBindGroupLayouts combines the bind group layout descriptors from the vertex and
// fragment shaders. Bindings present in both stages get the union of their visibility.
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		vDesc, hasV := vertexLayouts[g]
		fDesc, hasF := fragmentLayouts[g]

		switch {
		case hasV && !hasF:
			merged[g] = vDesc
		case hasF && !hasV:
			merged[g] = fDesc
		default:
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range vDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range fDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}
			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})
			merged[g] = wgpu.BindGroupLayoutDescriptor{
				Label:   vDesc.Label,
				Entries: entries,
			}
		}
	}
	return merged
}
