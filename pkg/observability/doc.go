/*
Package observability turns orchestrator lifecycle events into Prometheus
metrics and structured log lines.

Metrics live on their own registry so several orchestrators (and tests) can
exist in one process. Expose them with Metrics.Handler.
*/
package observability
