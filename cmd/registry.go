package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"storefront.GO/core/registry"
)

func registered() []*cobra.Command {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCmd); ok && v != nil {
		return v.([]*cobra.Command)
	}
	return nil
}

// Register adds a command. Call from init() in custom packages. Panics if registry is locked.
func Register(c *cobra.Command) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: locked (register only during init before Apply)")
	}
	for _, existing := range registered() {
		if existing.Name() == c.Name() {
			panic("cmd/registry: duplicate command " + c.Name())
		}
	}
	list := append(registered(), c)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, list)
}

// Apply adds all registered commands to root in name order. Locks the cmd
// registry (immutable after).
func Apply() {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		return
	}
	list := append([]*cobra.Command(nil), registered()...)
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	for _, c := range list {
		rootCmd.AddCommand(c)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
}
