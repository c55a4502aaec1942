package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标，随包导入注册到默认 Registry，
// 通过 /metrics 端点暴露。

var (
	// HTTPRequestsTotal 按方法、路由模板与状态码统计请求量。
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_http_requests_total",
		Help: "Total HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	// TasksCreatedTotal 创建成功的任务总数。
	TasksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasktracker_tasks_created_total",
		Help: "Total tasks created.",
	})

	// TasksDeletedTotal 删除成功的任务总数。
	TasksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasktracker_tasks_deleted_total",
		Help: "Total tasks deleted.",
	})

	// SignInFailureTotal 登录失败次数（未知用户与口令错误不区分）。
	SignInFailureTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasktracker_signin_failure_total",
		Help: "Total failed sign-in attempts.",
	})

	// SignInThrottledTotal 被限流拒绝的登录尝试次数。
	SignInThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasktracker_signin_throttled_total",
		Help: "Total sign-in attempts rejected by the rate limiter.",
	})
)
