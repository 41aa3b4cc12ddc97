//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Binary() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/tempo", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Removes build artifacts.
func (Build) Clean() error {
	return os.RemoveAll("bin")
}
