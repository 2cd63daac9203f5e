// Package telemetry gathers the best-effort node telemetry attached to
// proof submissions (spec §3, §4.7): memory obtained from the OS by the Go
// runtime, the runtime's soft memory limit as memory capacity (0 when no
// limit is set; total system memory is not read), an estimated peak
// GFLOPS, and the cached country code.
//
// Grounded on internal/infra/resource's sensor wrapper shape
// (ThermalMonitor/BatteryMonitor: a thin struct over a platform read with a
// safe zero default) generalized to a runtime.MemStats-backed sampler.
package telemetry

import (
	"context"
	"runtime"
	"runtime/debug"

	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/geoip"
)

// Sampler gathers Telemetry for each submission. Country is fetched
// through an injected geoip.CountryProvider (already process-wide cached
// by the caller via geoip.Cached) so tests can inject "US" deterministically.
type Sampler struct {
	country    geoip.CountryProvider
	numWorkers int

	// memoryCapacity is a one-time estimate (spec: "cached where possible");
	// gathering it requires no syscall on the hot path once cached.
	memoryCapacity uint64
}

// New creates a Sampler. numWorkers should be the running worker count —
// the estimated peak GFLOPS scales with how many CPU-bound proving workers
// are active.
func New(country geoip.CountryProvider, numWorkers int) *Sampler {
	return &Sampler{
		country:        country,
		numWorkers:     numWorkers,
		memoryCapacity: estimateMemoryCapacity(),
	}
}

// Sample gathers a Telemetry snapshot. Every field is best-effort; a
// failure to determine one just leaves it at its zero value (spec §3).
func (s *Sampler) Sample(ctx context.Context) domain.Telemetry {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return domain.Telemetry{
		FlopsPerSec:    estimateFlops(s.numWorkers),
		MemoryUsed:     mem.Sys,
		MemoryCapacity: s.memoryCapacity,
		Location:       s.country.Country(ctx),
	}
}

// estimateFlops derives a rough peak-GFLOPS figure from CPU count and
// active proving workers — a genuine hardware benchmark is out of scope;
// this is the same order-of-magnitude best-effort figure a resource
// governor would compute from static CPU info (compare
// internal/infra/resource/governor.go's baseBudget tiers).
func estimateFlops(numWorkers int) int64 {
	cores := int64(runtime.NumCPU())
	if numWorkers > 0 && int64(numWorkers) < cores {
		cores = int64(numWorkers)
	}
	const perCoreGFlops = 4 // conservative single-core estimate
	return cores * perCoreGFlops * 1_000_000_000
}

// estimateMemoryCapacity returns the runtime's configured soft memory
// limit if set (GOMEMLIMIT or debug.SetMemoryLimit), otherwise 0
// (unknown) — best-effort per spec §3. Passing -1 reads the current
// limit without changing it.
func estimateMemoryCapacity() uint64 {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == maxInt64 {
		return 0
	}
	return uint64(limit)
}

const maxInt64 = 1<<63 - 1
