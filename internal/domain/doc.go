// Package domain contains the core business entities and value objects of
// the application: workspaces and their branches, the tasks surfaced on the
// landing screen, prompt submissions, and the jobs they spawn. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
