package handler

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/response"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = time.Second

// Endpoints lists the public API routes advertised by GET /api/health.
var Endpoints = []string{
	"POST /api/verify-subject",
	"POST /api/verify-sub-subject",
	"POST /api/generate-quiz",
	"POST /api/review-quiz",
	"GET /api/health",
	"GET /health",
	"GET /metrics",
}

// SystemHandler reports service identity and process health.
type SystemHandler struct {
	service       string
	version       string
	rdb           redis.Cmdable
	eventsEnabled bool
	startTime     time.Time
}

// NewSystemHandler builds the handler. rdb may be nil when Redis is not
// configured.
func NewSystemHandler(cfg *config.Config, rdb redis.Cmdable, eventsEnabled bool) *SystemHandler {
	return &SystemHandler{
		service:       cfg.ServiceName,
		version:       cfg.ServiceVersion,
		rdb:           rdb,
		eventsEnabled: eventsEnabled,
		startTime:     time.Now(),
	}
}

type apiHealth struct {
	Success   bool      `json:"success"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Endpoints []string  `json:"endpoints"`
}

// APIHealth godoc
// GET /api/health
func (h *SystemHandler) APIHealth(c *gin.Context) {
	response.Success(c, http.StatusOK, apiHealth{
		Success:   true,
		Service:   h.service,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Endpoints: Endpoints,
	})
}

type memoryStats struct {
	HeapAlloc uint64 `json:"heapAlloc"`
	HeapSys   uint64 `json:"heapSys"`
	RSS       uint64 `json:"rss"`
}

type processHealth struct {
	Success       bool              `json:"success"`
	Status        string            `json:"status"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Memory        memoryStats       `json:"memory"`
	Goroutines    int               `json:"goroutines"`
	GoVersion     string            `json:"goVersion"`
	Dependencies  map[string]string `json:"dependencies"`
	Timestamp     time.Time         `json:"timestamp"`
}

// ProcessHealth godoc
// GET /health
//
// Optional dependencies are reported but never fail the check: the API
// keeps serving without them.
func (h *SystemHandler) ProcessHealth(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rss, _ := readProcessRSS()
	up := time.Since(h.startTime)

	response.Success(c, http.StatusOK, processHealth{
		Success:       true,
		Status:        "ok",
		Uptime:        formatDuration(up),
		UptimeSeconds: int64(up.Seconds()),
		Memory: memoryStats{
			HeapAlloc: ms.HeapAlloc,
			HeapSys:   ms.HeapSys,
			RSS:       rss,
		},
		Goroutines:   runtime.NumGoroutine(),
		GoVersion:    runtime.Version(),
		Dependencies: h.dependencies(c.Request.Context()),
		Timestamp:    time.Now().UTC(),
	})
}

func (h *SystemHandler) dependencies(ctx context.Context) map[string]string {
	deps := map[string]string{"redis": "disabled", "events": "disabled"}
	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			deps["redis"] = "unreachable"
		} else {
			deps["redis"] = "ok"
		}
	}
	if h.eventsEnabled {
		deps["events"] = "enabled"
	}
	return deps
}

// readProcessRSS reads VmRSS from /proc/self/status. Returns 0 and an
// error on platforms without procfs.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return parseKB(line), nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

// parseKB converts a "Key:   1234 kB" status line to bytes.
func parseKB(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	val, _ := strconv.ParseUint(fields[1], 10, 64)
	return val * 1024
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
