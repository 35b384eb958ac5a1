// AngelaMos | 2026
// dto.go

package analytics

type ThresholdResponse struct {
	ExcellentMs int64 `json:"excellentMs"`
	GoodMs      int64 `json:"goodMs"`
}

type BenchmarkResponse struct {
	Endpoint    string            `json:"endpoint"`
	DurationMs  float64           `json:"durationMs"`
	Performance string            `json:"performance"`
	ResultCount int               `json:"resultCount"`
	Thresholds  ThresholdResponse `json:"thresholds"`
	Params      map[string]string `json:"params"`
}

type DashboardResponse struct {
	Service      string       `json:"service"`
	Version      string       `json:"version"`
	Capabilities []string     `json:"capabilities"`
	Indexes      []IndexInfo  `json:"indexes"`
	Caching      CachingInfo  `json:"caching"`
	Targets      []TargetInfo `json:"targets"`
}

type IndexInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Purpose string `json:"purpose"`
}

type CachingInfo struct {
	Enabled    bool     `json:"enabled"`
	TTLSeconds int64    `json:"ttlSeconds"`
	Keys       []string `json:"keys"`
}

type TargetInfo struct {
	Benchmark   string `json:"benchmark"`
	ExcellentMs int64  `json:"excellentMs"`
	GoodMs      int64  `json:"goodMs"`
}

type OptimizationResponse struct {
	Optimizations []Optimization `json:"optimizations"`
}

type Optimization struct {
	Area        string `json:"area"`
	Technique   string `json:"technique"`
	Description string `json:"description"`
}

type SystemInfoResponse struct {
	App      AppInfo        `json:"app"`
	Uptime   string         `json:"uptime"`
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type AppInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAlloc"`
	MemSys       uint64 `json:"memSys"`
	NumGC        uint32 `json:"numGc"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
	StaleConns uint32 `json:"staleConns"`
}
