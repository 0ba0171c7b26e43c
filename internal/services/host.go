package services

import (
	"context"
	"os"
	"time"

	"infogrid-backend-go/internal/repository"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type HostStats struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
}

// CaptureHost samples process and host usage. Probes that fail leave their fields at zero.
func CaptureHost(ctx context.Context, diskPath string) HostStats {
	stats := HostStats{CapturedAt: time.Now().UTC()}
	if memStat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.SystemMemoryTotal = int64(memStat.Total)
		stats.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		diskStat, err = disk.UsageWithContext(ctx, "/")
	}
	if err == nil {
		stats.DiskTotalBytes = int64(diskStat.Total)
		stats.DiskUsedBytes = int64(diskStat.Used)
	}
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfoWithContext(ctx); err == nil && rss != nil {
			stats.ProcessRSSBytes = int64(rss.RSS)
		}
		if perc, err := proc.CPUPercentWithContext(ctx); err == nil {
			stats.ProcessCpuLoad = perc / 100.0
		}
	}
	if sys, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(sys) > 0 {
		stats.SystemCpuLoad = sys[0] / 100.0
	}
	return stats
}

type ContentCounts struct {
	News    int `json:"news"`
	Events  int `json:"events"`
	Posters int `json:"posters"`
	QRCodes int `json:"qrcodes"`
	Admins  int `json:"admins"`
}

type Dashboard struct {
	Counts       ContentCounts `json:"counts"`
	BoardClients int           `json:"boardClients"`
	Host         HostStats     `json:"host"`
}

type DashboardService struct {
	Repos    repository.Repositories
	Hub      *BoardHub
	DiskPath string
	capture  func(ctx context.Context, diskPath string) HostStats
}

func NewDashboardService(repos repository.Repositories, hub *BoardHub, diskPath string) *DashboardService {
	return &DashboardService{Repos: repos, Hub: hub, DiskPath: diskPath, capture: CaptureHost}
}

func (d *DashboardService) Snapshot(ctx context.Context) (Dashboard, error) {
	var counts ContentCounts
	var err error
	if counts.News, err = d.Repos.News.Count(ctx); err != nil {
		return Dashboard{}, WrapError(err, "count news")
	}
	if counts.Events, err = d.Repos.Events.Count(ctx); err != nil {
		return Dashboard{}, WrapError(err, "count events")
	}
	if counts.Posters, err = d.Repos.Posters.Count(ctx); err != nil {
		return Dashboard{}, WrapError(err, "count posters")
	}
	if counts.QRCodes, err = d.Repos.QRCodes.Count(ctx); err != nil {
		return Dashboard{}, WrapError(err, "count qr codes")
	}
	if counts.Admins, err = d.Repos.Admins.Count(ctx); err != nil {
		return Dashboard{}, WrapError(err, "count admins")
	}
	out := Dashboard{Counts: counts}
	if d.Hub != nil {
		out.BoardClients = d.Hub.Clients()
	}
	capture := d.capture
	if capture == nil {
		capture = CaptureHost
	}
	out.Host = capture(ctx, d.DiskPath)
	return out, nil
}
