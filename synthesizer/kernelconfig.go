package synthesizer

// DeviceProperties mirrors the handful of CUDA device attributes
// `calculateBestKernelConfig` (original `synthesizer02.cpp`) reads via the
// CUDA runtime, exposed as a plain struct so the search is testable without
// a real GPU (SPEC_FULL.md "Supplemented features").
type DeviceProperties struct {
	MaxThreadsPerBlock   int
	MultiProcessorCount  int
	WarpSize             int
	SharedMemPerBlock    int
	MaxThreadsPerMP      int
}

// KernelConfig is a computed grid/block launch shape plus, when launches
// must be split to stay under a watchdog timeout, the number of separate
// launches and the per-launch element count each covers.
type KernelConfig struct {
	GridSize        int
	BlockSize       int
	NumLaunches     int
	ElementsPerLaunch int
}

// fullUtilizationThreadCount is the largest thread count that keeps every
// multiprocessor fully occupied: MultiProcessorCount * MaxThreadsPerMP.
func fullUtilizationThreadCount(dev DeviceProperties) int {
	if dev.MultiProcessorCount <= 0 || dev.MaxThreadsPerMP <= 0 {
		return dev.MaxThreadsPerBlock
	}
	return dev.MultiProcessorCount * dev.MaxThreadsPerMP
}

// CalculateBestKernelConfig picks a block size maximizing threads-per-SM
// occupancy for n total elements (spec §4.4 Step 5 "Kernel launches go
// through a helper calculateBestKernelConfig that maximizes threads per SM,
// honouring shared-memory budget when that mode is used"), then, if
// watchdogTimeout is set, splits the launch into multiple kernel calls each
// bounded by the device's full-utilization thread count.
//
// sharedMemPerThread is the number of bytes of __shared__ staging memory one
// thread needs; pass 0 when UseSharedMemory is off.
func CalculateBestKernelConfig(n int, dev DeviceProperties, sharedMemPerThread int, watchdogTimeout bool) KernelConfig {
	block := bestBlockSize(dev, sharedMemPerThread)
	if block <= 0 {
		block = 1
	}

	elementsPerLaunch := n
	numLaunches := 1
	if watchdogTimeout {
		full := fullUtilizationThreadCount(dev)
		if full > 0 && n > full {
			numLaunches = (n + full - 1) / full
			elementsPerLaunch = full
		}
	}

	grid := (elementsPerLaunch + block - 1) / block
	if grid < 1 {
		grid = 1
	}
	return KernelConfig{
		GridSize:          grid,
		BlockSize:         block,
		NumLaunches:        numLaunches,
		ElementsPerLaunch:  elementsPerLaunch,
	}
}

// bestBlockSize searches warp-size multiples up to MaxThreadsPerBlock,
// preferring the largest block that both divides evenly into full warps and
// fits the device's shared-memory-per-block budget when shared-memory
// staging is in use.
func bestBlockSize(dev DeviceProperties, sharedMemPerThread int) int {
	warp := dev.WarpSize
	if warp <= 0 {
		warp = 32
	}
	max := dev.MaxThreadsPerBlock
	if max <= 0 {
		max = warp
	}

	best := warp
	for cand := warp; cand <= max; cand += warp {
		if sharedMemPerThread > 0 && dev.SharedMemPerBlock > 0 {
			if cand*sharedMemPerThread > dev.SharedMemPerBlock {
				break
			}
		}
		best = cand
	}
	return best
}
