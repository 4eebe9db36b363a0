// Package store defines the persistence interfaces and shared store errors.
// Concrete implementations live under internal/platform.
package store
