package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resume_editor"

var (
	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "saves_total",
			Help:      "自动保存请求总数，按结果区分。",
		},
		[]string{"result"},
	)

	syncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "requests_total",
			Help:      "远程同步请求总数，按类型与结果区分。",
		},
		[]string{"kind", "result"},
	)

	syncsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "skipped_total",
			Help:      "未发送的同步请求数（离线入队、节流、已有请求在途）。",
		},
		[]string{"reason"},
	)

	offlineQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "offline_queue_depth",
			Help:      "离线队列中等待重放的动作数量。",
		},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "jobs_total",
			Help:      "后台导出任务数，按结果区分。",
		},
		[]string{"result"},
	)

	shareResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "share",
			Name:      "resolves_total",
			Help:      "公开分享链接访问次数，按结果区分。",
		},
		[]string{"status"},
	)
)

// 结果标签取值。
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

func ObserveSave(result string) { savesTotal.WithLabelValues(result).Inc() }

func ObserveSync(kind, result string) { syncsTotal.WithLabelValues(kind, result).Inc() }

// SkipSync counts a mutation that was not synced on this tick.
func SkipSync(reason string) { syncsSkipped.WithLabelValues(reason).Inc() }

func SetOfflineQueueDepth(n int) { offlineQueueDepth.Set(float64(n)) }

func ObserveShareResolve(status string) { shareResolvesTotal.WithLabelValues(status).Inc() }

func ObserveExport(result string) { exportsTotal.WithLabelValues(result).Inc() }
