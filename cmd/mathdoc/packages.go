package main

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mathdoc/tex"
)

// runPackages prints the registered TeX packages with their merge
// priority and dependencies.
func runPackages(args []string, env *Environment) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: packages takes no arguments", ErrUsage)
	}

	reg, err := tex.NewBuiltinRegistry()
	if err != nil {
		return err
	}
	for _, name := range reg.Names() {
		c, _ := reg.Package(name)
		prio := c.Priority
		if prio == 0 {
			prio = tex.DefaultPackagePriority
		}
		line := fmt.Sprintf("%-14s priority %d", name, prio)
		if len(c.Dependencies) > 0 {
			line += ", requires " + strings.Join(c.Dependencies, ", ")
		}
		fmt.Fprintln(env.Stdout, line)
	}
	return nil
}
