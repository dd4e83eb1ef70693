//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every executable into ./bin
func Build() error {
	mg.Deps(BuildFecom, BuildMeasureCodecs)
	fmt.Println("Compilation finished")
	return nil
}

// goCommand runs the go tool with the cgo flags of the environment, which
// the HDF5 export needs.
func goCommand(args ...string) *exec.Cmd {
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", os.Getenv("CGO_LDFLAGS")),
		fmt.Sprintf("CGO_CFLAGS=%s", os.Getenv("CGO_CFLAGS")))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func BuildFecom() error {
	fmt.Println("Building fecom executable...")
	return goCommand("build", "-o", "./bin/fecom", "./fecom").Run()
}

func BuildMeasureCodecs() error {
	fmt.Println("Building measureCodecs executable...")
	return goCommand("build", "-o", "./bin/measureCodecs", "./measureCodecs").Run()
}

// Test runs the library tests. Set FECOM_HDF5=1 to include the HDF5 export
// and the command line tests, which need libhdf5.
func Test() error {
	fmt.Println("Running tests...")
	args := []string{"test", "./pkg", "./measureCodecs"}
	if os.Getenv("FECOM_HDF5") != "" {
		args = []string{"test", "-tags", "hdf5", "./..."}
	}
	return goCommand(args...).Run()
}
