package spmv

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"
)

// DeviceLimits describes the hardware resource limits the occupancy
// calculator sizes launches against. On the CPU device the values are
// modelled; a real accelerator backend would fill them from a device query.
type DeviceLimits struct {
	MultiprocessorCount         int
	MaxThreadsPerMultiprocessor int
	MaxBlocksPerMultiprocessor  int
	SharedMemPerMultiprocessor  int // bytes
	RegistersPerMultiprocessor  int
	MaxThreadsPerBlock          int
}

// LimitsProvider is the capability interface the occupancy calculator
// queries. Swapping the provider retargets launch sizing to a different
// accelerator without touching kernel logic.
type LimitsProvider interface {
	Limits() DeviceLimits
}

// Device represents a compute device. Here this is the CPU with its cores
// standing in for multiprocessors.
type Device struct {
	ID       int    // Unique device identifier
	Name     string // Human-readable device name
	NumCores int    // Number of CPU cores

	limits DeviceLimits
}

// Limits implements LimitsProvider.
func (d *Device) Limits() DeviceLimits {
	return d.limits
}

var (
	defaultDevice *Device
	deviceOnce    sync.Once
)

// GetDevice returns the default device, initializing it on first use.
func GetDevice() *Device {
	deviceOnce.Do(func() {
		cores := runtime.NumCPU()
		defaultDevice = &Device{
			ID:       0,
			Name:     deviceName(),
			NumCores: cores,
			limits: DeviceLimits{
				MultiprocessorCount:         cores,
				MaxThreadsPerMultiprocessor: MaxThreadsPerMultiprocessor,
				MaxBlocksPerMultiprocessor:  MaxBlocksPerMultiprocessor,
				SharedMemPerMultiprocessor:  SharedMemPerMultiprocessor,
				RegistersPerMultiprocessor:  RegistersPerMultiprocessor,
				MaxThreadsPerBlock:          MaxThreadsPerBlock,
			},
		}
	})
	return defaultDevice
}

// deviceName derives a descriptive name from detected ISA extensions
func deviceName() string {
	switch {
	case cpu.X86.HasAVX512F:
		return fmt.Sprintf("CPU (AVX-512, %d cores)", runtime.NumCPU())
	case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
		return fmt.Sprintf("CPU (AVX2+FMA, %d cores)", runtime.NumCPU())
	case cpu.X86.HasAVX:
		return fmt.Sprintf("CPU (AVX, %d cores)", runtime.NumCPU())
	case cpu.ARM64.HasASIMD:
		return fmt.Sprintf("CPU (NEON, %d cores)", runtime.NumCPU())
	default:
		return fmt.Sprintf("CPU (%d cores)", runtime.NumCPU())
	}
}
