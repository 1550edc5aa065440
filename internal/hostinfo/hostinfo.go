// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hostinfo describes the machine benchmarks run on.
package hostinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info is a summary of the host. Fields that could not be determined
// are left zero.
type Info struct {
	Arch     string
	Hostname string
	Platform string
	CPUModel string
	CPUCount int
	CPUMHz   float64
	RAMGiB   float64
}

// Collect gathers Info for the current host. Failures to query a
// subsystem are not fatal: the corresponding fields stay zero.
func Collect() Info {
	info := Info{Arch: runtime.GOARCH}
	if hs, err := host.Info(); err == nil {
		info.Hostname = hs.Hostname
		info.Platform = hs.Platform
	}
	if cs, err := cpu.Info(); err == nil && len(cs) > 0 {
		total := 0.0
		for _, c := range cs {
			total += c.Mhz
		}
		info.CPUModel = cs[0].ModelName
		info.CPUCount = len(cs)
		info.CPUMHz = total / float64(len(cs))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.RAMGiB = float64(vm.Total) / 1024 / 1024 / 1024
	}
	return info
}

// Pairs returns info as key/value pairs in a fixed order, suitable
// for structured logging and for archiving.
func (i Info) Pairs() [][2]string {
	return [][2]string{
		{"arch", i.Arch},
		{"hostname", i.Hostname},
		{"platform", i.Platform},
		{"cpu-model", i.CPUModel},
		{"cpu-count", fmt.Sprint(i.CPUCount)},
		{"cpu-mhz", fmt.Sprintf("%.0f", i.CPUMHz)},
		{"ram-gib", fmt.Sprintf("%.1f", i.RAMGiB)},
	}
}

// String returns a one-line description of the host, or "" for the
// zero Info.
func (i Info) String() string {
	if i == (Info{}) {
		return ""
	}
	return fmt.Sprintf("%s %s/%s, %d x %s, %.1f GiB", i.Hostname, i.Platform, i.Arch, i.CPUCount, i.CPUModel, i.RAMGiB)
}
