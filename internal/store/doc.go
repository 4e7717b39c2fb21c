// Package store defines interfaces for landing data and prompt job
// persistence. These interfaces abstract the underlying storage mechanism
// from the application's core logic, allowing handlers and background
// tasks to remain independent of the concrete dataset implementation.
package store
