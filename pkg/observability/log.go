package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level, and failures at
// error level. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger. A nil logger uses log.Default().
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

func (h *LogHooks) OnDecodeStart(_ context.Context, format string) {
	h.logger.Debug("decode start", "format", format)
}

func (h *LogHooks) OnDecodeComplete(_ context.Context, format string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("decode failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("decode done", "format", format, "nodes", nodeCount, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount, edgeCount int) {
	h.logger.Debug("layout start", "nodes", nodeCount, "edges", edgeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, ranks, crossings int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("layout failed", "err", err)
		return
	}
	h.logger.Debug("layout done", "ranks", ranks, "crossings", crossings, "duration", d)
}

func (h *LogHooks) OnExportStart(_ context.Context, format string) {
	h.logger.Debug("export start", "format", format)
}

func (h *LogHooks) OnExportComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("export failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("export done", "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
