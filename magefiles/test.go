//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests under the race detector.
func (Test) Race() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go vet over the whole module.
func (Test) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
