// Package driven defines the driven (outbound) ports: interfaces the core
// services depend on, implemented by connectors and adapters.
package driven
