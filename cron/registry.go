package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"storefront.GO/core/registry"
)

// JobFunc is the body of a scheduled job. args come from the CLI when the
// job is run by hand.
type JobFunc func(ctx context.Context, args ...string) error

// Job holds schedule and run function.
type Job struct {
	Name     string
	Schedule string
	Run      JobFunc
}

var mu sync.Mutex

// Register adds a cron job. Call from init() in job packages. Panics if registry is locked.
func Register(name string, schedule string, run JobFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCron) {
		panic("cron/registry: locked (register only during init before StartCron)")
	}
	name = strings.ToLower(name)
	jobs := getJobs()
	if _, ok := jobs[name]; ok {
		panic("cron/registry: duplicate job " + name)
	}
	jobs[name] = Job{Name: name, Schedule: schedule, Run: run}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCron, jobs)
}

// Unregister removes a job (for tests).
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)
	jobs := getJobs()
	delete(jobs, strings.ToLower(name))
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCron, jobs)
}

func getJobs() map[string]Job {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCron); ok && v != nil {
		return v.(map[string]Job)
	}
	return make(map[string]Job)
}

// Jobs returns a copy of all registered jobs. Locks the cron registry on
// first call.
func Jobs() map[string]Job {
	out := make(map[string]Job)
	for k, v := range getJobs() {
		out[k] = v
	}
	if !registry.GlobalRegistry.IsLocked(registry.KeyRegistryCron) {
		registry.GlobalRegistry.Lock(registry.KeyRegistryCron)
	}
	return out
}

// Names returns the registered job names in order.
func Names() []string {
	jobs := Jobs()
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs one job by name immediately.
func RunJob(ctx context.Context, name string, args ...string) error {
	j, ok := Jobs()[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return j.Run(ctx, args...)
}
