package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var projectRootPattern = regexp.MustCompile(`\/tensor-tests-go([A-Za-z0-9_-]+)?\/?$|\/module\/?$`)

func GetProjectRootPath() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	startingPath := ""
	for iterations := 0; iterations <= 10; iterations++ {
		p, err := filepath.Abs(fmt.Sprintf("%s/%s", wd, startingPath))
		if err != nil {
			panic(err)
		}
		if projectRootPattern.MatchString(p) {
			return p
		}
		if _, err := os.Stat(filepath.Join(p, "go.mod")); err == nil {
			return p
		}
		startingPath = startingPath + "/.."
	}
	panic("Could not find project root path")
}

// ProgramBinary pairs a program id with the shared object the validator preloads for it.
type ProgramBinary struct {
	ProgramId string
	Path      string
}

// ReadProgramBinaries lists the .so files under internal/testData/programs. Each file is
// named after the program id it is deployed at.
func ReadProgramBinaries(projectRoot string) ([]ProgramBinary, error) {
	dir := filepath.Join(projectRoot, "internal", "testData", "programs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read program dir: %w", err)
	}

	binaries := make([]ProgramBinary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		binaries = append(binaries, ProgramBinary{
			ProgramId: entry.Name()[:len(entry.Name())-len(".so")],
			Path:      filepath.Join(dir, entry.Name()),
		})
	}
	return binaries, nil
}
