package cmd

import (
	"os"
	"strings"
)

// getEnv returns the process environment as a map.
func getEnv() map[string]string {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}
	return env
}
