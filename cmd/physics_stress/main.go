// Stress test comparing the hash grid and GPU broad phases on a
// populated dynamic space.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"orbitribbon/internal/compute"
	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
)

const iterations = 10

func main() {
	cpuOnly := flag.Bool("cpu", false, "skip the GPU run")
	flag.Parse()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	gpu := false
	if !*cpuOnly {
		info, err := compute.Initialize()
		if err != nil {
			fmt.Printf("GPU unavailable: %v\n\n", err)
		} else {
			gpu = true
			fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)
		}
	}

	for _, count := range []int{100, 500, 1000, 2000, 5000, 10000} {
		run(count, gpu)
	}
}

// populate fills a hash space with count random spheres; the cube they
// spawn in grows with count to keep the density steady.
func populate(count int) *physics.Space {
	rng := rand.New(rand.NewSource(42))
	space := physics.NewSpace(nil, physics.HashSpace)
	size := 50.0 + float64(count)/100
	for i := 0; i < count; i++ {
		g := physics.NewSphere(space, 0.5+rng.Float64()*0.5)
		g.SetPosition(mgl64.Vec3{
			rng.Float64()*size - size/2,
			rng.Float64()*size - size/2,
			rng.Float64()*size - size/2,
		})
	}
	return space
}

func timeCollide(space *physics.Space) (time.Duration, int) {
	pairs := 0
	count := func(a, b physics.Node) { pairs++ }
	space.Collide(count) // warm up
	start := time.Now()
	for i := 0; i < iterations; i++ {
		pairs = 0
		space.Collide(count)
	}
	return time.Since(start) / iterations, pairs
}

func run(count int, gpu bool) {
	space := populate(count)
	cpuTime, cpuPairs := timeCollide(space)
	line := fmt.Sprintf("%5d objects: grid %10v (%5d pairs)", count, cpuTime.Round(time.Microsecond), cpuPairs)

	if gpu {
		pf, err := compute.NewPairFinder(uint32(count), uint32(count*20))
		if err != nil {
			fmt.Printf("%s | GPU ERROR: %v\n", line, err)
			return
		}
		defer pf.Release()
		space.SetPairFinder(pf, 0)
		gpuTime, gpuPairs := timeCollide(space)
		speedup := float64(cpuTime) / float64(gpuTime)
		line += fmt.Sprintf(" | GPU %10v (%5d pairs) | %.1fx", gpuTime.Round(time.Microsecond), gpuPairs, speedup)
		if gpuPairs != cpuPairs {
			line += " MISMATCH"
		}
	}
	fmt.Println(line)
}
