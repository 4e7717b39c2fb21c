// Package memstore provides in-memory implementations of the store
// interfaces. The landing dataset ships with a seeded default so the
// service is usable without any external data source; tests inject their
// own datasets through the WithWorkspaces and WithTasks options.
package memstore
