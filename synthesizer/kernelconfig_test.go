package synthesizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func midRangeDevice() DeviceProperties {
	return DeviceProperties{
		MaxThreadsPerBlock:  1024,
		MultiProcessorCount: 20,
		WarpSize:            32,
		SharedMemPerBlock:   49152,
		MaxThreadsPerMP:     2048,
	}
}

func TestCalculateBestKernelConfig_NoWatchdogIsOneLaunch(t *testing.T) {
	kc := CalculateBestKernelConfig(100000, midRangeDevice(), 0, false)
	assert.Equal(t, 1, kc.NumLaunches)
	assert.Equal(t, 100000, kc.ElementsPerLaunch)
	assert.Equal(t, 1024, kc.BlockSize)
}

func TestCalculateBestKernelConfig_WatchdogSplitsLargeLaunch(t *testing.T) {
	dev := midRangeDevice()
	full := dev.MultiProcessorCount * dev.MaxThreadsPerMP
	kc := CalculateBestKernelConfig(full*3, dev, 0, true)
	assert.Equal(t, 3, kc.NumLaunches)
	assert.Equal(t, full, kc.ElementsPerLaunch)
}

func TestCalculateBestKernelConfig_SharedMemoryBudgetShrinksBlockSize(t *testing.T) {
	dev := midRangeDevice()
	withoutShared := CalculateBestKernelConfig(1000, dev, 0, false)
	withShared := CalculateBestKernelConfig(1000, dev, 2048, false)
	assert.LessOrEqual(t, withShared.BlockSize, withoutShared.BlockSize)
}

func TestCalculateBestKernelConfig_ZeroDevicePropertiesStillProducesAPositiveBlockSize(t *testing.T) {
	kc := CalculateBestKernelConfig(10, DeviceProperties{}, 0, false)
	assert.Greater(t, kc.BlockSize, 0)
	assert.Greater(t, kc.GridSize, 0)
}
