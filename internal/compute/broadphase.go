package compute

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"orbitribbon/internal/physics"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrTooManyObjects is returned when a query exceeds the capacity the
	// finder was created with.
	ErrTooManyObjects = errors.New("too many objects for gpu broad phase")
	// ErrPairOverflow is returned when more pairs overlap than the pair
	// buffer holds. Results would be incomplete, so none are returned.
	ErrPairOverflow = errors.New("gpu pair buffer overflow")
)

// gpuBox is an AABB packed as two vec4<f32>.
type gpuBox struct {
	Min [4]float32
	Max [4]float32
}

type gpuPair struct {
	A, B uint32
}

const pairShader = `
struct Box {
    min: vec4<f32>,
    max: vec4<f32>,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> boxes: array<Box>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> objectCount: u32;

// One thread per box, tested against every box with a higher index.
@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= objectCount) {
        return;
    }
    let a = boxes[i];
    for (var j = i + 1u; j < objectCount; j = j + 1u) {
        let b = boxes[j];
        if (all(a.min.xyz <= b.max.xyz) && all(b.min.xyz <= a.max.xyz)) {
            let idx = atomicAdd(&pairCount, 1u);
            if (idx < arrayLength(&pairs)) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

// PairFinder finds overlapping AABB pairs on the GPU. It implements
// physics.PairFinder.
type PairFinder struct {
	system   *System
	pipeline *Pipeline

	boxBuffer   *Buffer
	pairBuffer  *Buffer
	countBuffer *Buffer
	sizeBuffer  *Buffer

	maxObjects uint32
	maxPairs   uint32

	mu sync.Mutex
}

var _ physics.PairFinder = (*PairFinder)(nil)

// NewPairFinder allocates buffers for up to maxObjects boxes and
// maxPairs overlapping pairs. Initialize must have succeeded.
func NewPairFinder(maxObjects, maxPairs uint32) (*PairFinder, error) {
	sys := Get()
	if sys == nil {
		return nil, ErrUnavailable
	}
	if maxObjects == 0 || maxPairs == 0 {
		return nil, fmt.Errorf("pair finder needs room for objects and pairs, got %d/%d", maxObjects, maxPairs)
	}

	pipeline, err := sys.CreatePipeline("broadphase", pairShader, "main", []wgpu.BufferBindingType{
		wgpu.BufferBindingTypeReadOnlyStorage,
		wgpu.BufferBindingTypeStorage,
		wgpu.BufferBindingTypeStorage,
		wgpu.BufferBindingTypeUniform,
	})
	if err != nil {
		return nil, err
	}

	pf := &PairFinder{system: sys, pipeline: pipeline, maxObjects: maxObjects, maxPairs: maxPairs}
	allocs := []struct {
		dst   **Buffer
		label string
		size  uint64
		usage wgpu.BufferUsage
	}{
		{&pf.boxBuffer, "boxes", uint64(maxObjects) * 32, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&pf.pairBuffer, "pairs", uint64(maxPairs) * 8, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc},
		{&pf.countBuffer, "pairCount", 4, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst},
		// uniform buffers are at least 16 bytes
		{&pf.sizeBuffer, "objectCount", 16, wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst},
	}
	for _, a := range allocs {
		buf, err := sys.CreateBuffer(a.label, a.size, a.usage)
		if err != nil {
			pf.Release()
			return nil, err
		}
		*a.dst = buf
	}
	return pf, nil
}

// FindPairs returns index pairs (i < j) of boxes whose bounds overlap.
func (pf *PairFinder) FindPairs(boxes []physics.AABB) ([][2]int, error) {
	if len(boxes) < 2 {
		return nil, nil
	}
	if uint64(len(boxes)) > uint64(pf.maxObjects) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyObjects, len(boxes), pf.maxObjects)
	}
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.system.mu.Lock()
	defer pf.system.mu.Unlock()

	n := uint32(len(boxes))
	sys := pf.system
	sys.WriteBuffer(pf.boxBuffer, 0, ToBytes(packBoxes(boxes)))
	sys.WriteBuffer(pf.countBuffer, 0, ToBytes([]uint32{0}))
	sys.WriteBuffer(pf.sizeBuffer, 0, ToBytes([]uint32{n, 0, 0, 0}))

	buffers := []*Buffer{pf.boxBuffer, pf.pairBuffer, pf.countBuffer, pf.sizeBuffer}
	if err := sys.Dispatch(pf.pipeline, buffers, (n+255)/256); err != nil {
		return nil, err
	}

	countData, err := sys.ReadBuffer(pf.countBuffer, 4)
	if err != nil {
		return nil, err
	}
	count := wgpu.FromBytes[uint32](countData)[0]
	if count == 0 {
		return nil, nil
	}
	if count > pf.maxPairs {
		return nil, fmt.Errorf("%w: %d pairs, room for %d", ErrPairOverflow, count, pf.maxPairs)
	}

	pairData, err := sys.ReadBuffer(pf.pairBuffer, uint64(count)*8)
	if err != nil {
		return nil, err
	}
	return unpackPairs(wgpu.FromBytes[gpuPair](pairData), len(boxes)), nil
}

// Release frees the finder's GPU resources.
func (pf *PairFinder) Release() {
	for _, b := range []*Buffer{pf.boxBuffer, pf.pairBuffer, pf.countBuffer, pf.sizeBuffer} {
		if b != nil {
			b.Release()
		}
	}
	if pf.pipeline != nil {
		pf.pipeline.Release()
	}
}

// packBoxes narrows boxes to float32, rounding outward so that no
// overlapping pair is lost.
func packBoxes(boxes []physics.AABB) []gpuBox {
	out := make([]gpuBox, len(boxes))
	for i, b := range boxes {
		for k := 0; k < 3; k++ {
			out[i].Min[k] = roundDown(b.Min[k])
			out[i].Max[k] = roundUp(b.Max[k])
		}
	}
	return out
}

func roundDown(v float64) float32 {
	f := float32(v)
	if float64(f) > v {
		f = math.Nextafter32(f, float32(math.Inf(-1)))
	}
	return f
}

func roundUp(v float64) float32 {
	f := float32(v)
	if float64(f) < v {
		f = math.Nextafter32(f, float32(math.Inf(1)))
	}
	return f
}

func unpackPairs(raw []gpuPair, n int) [][2]int {
	out := make([][2]int, 0, len(raw))
	for _, p := range raw {
		if int(p.A) >= n || int(p.B) >= n {
			continue
		}
		out = append(out, [2]int{int(p.A), int(p.B)})
	}
	return out
}
