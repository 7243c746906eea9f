package metrics

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemSnapshot holds host-wide resource usage at the end of a run.
type SystemSnapshot struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// ReadSystem samples host CPU and memory usage. CPU uses interval=0, the
// delta since the previous call. Fields stay zero when sampling fails.
func ReadSystem() SystemSnapshot {
	var s SystemSnapshot
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}
