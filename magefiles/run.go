//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed demo with the tempo.toml next to it.
func (Run) Demo() error {
	fmt.Println("Run demo...")
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}
