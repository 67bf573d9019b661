package system

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// buffersPerWorker is how many full frames a worker may hold at once:
// the raster, a scaled thumbnail and the encoder copy.
const buffersPerWorker = 3

// RecommendedWorkers sizes the frame worker pool from logical CPUs and
// available memory. frameBytes is the size of one RGBA frame.
func RecommendedWorkers(frameBytes uint64) int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = 1
	}

	var available uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		available = vm.Available
	}
	return workerBudget(cpus, available, frameBytes)
}

func workerBudget(cpus int, available, frameBytes uint64) int {
	workers := cpus
	if available > 0 && frameBytes > 0 {
		// leave half of the free memory to the rest of the system
		byMem := int(available / 2 / (frameBytes * buffersPerWorker))
		if byMem < workers {
			workers = byMem
		}
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
