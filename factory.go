package fileutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DriverFactory creates the Store backing one area from a config
type DriverFactory func(cfg *Config, area Area) (Store, error)

var (
	driverFactories = make(map[string]DriverFactory)
	factoryMutex    sync.RWMutex
)

// RegisterDriver registers a driver factory function
func RegisterDriver(name string, factory DriverFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	driverFactories[name] = factory
}

// Drivers returns the names of all registered drivers, sorted.
func Drivers() []string {
	factoryMutex.RLock()
	defer factoryMutex.RUnlock()

	names := make([]string, 0, len(driverFactories))
	for name := range driverFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateStore creates the store for area using the configured driver
func CreateStore(cfg *Config, area Area) (Store, error) {
	factoryMutex.RLock()
	factory, exists := driverFactories[cfg.Driver]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("driver %s not registered", cfg.Driver)
	}

	return factory(cfg, area)
}

// AreaDir is the directory name an area occupies below a driver root.
func AreaDir(area Area) string {
	return strings.ToLower(string(area))
}
