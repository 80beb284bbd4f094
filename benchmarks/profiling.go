package benchmarks

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"runtime/pprof"

	"github.com/zeu5/qlearning-nav/util"
)

var (
	cpuprofile string
	memprofile string
)

// startProfiling starts the cpu profile when asked to. The returned
// function stops it and writes the heap profile.
func startProfiling() (func(), error) {
	stop := func() {}
	if cpuprofile == "" && memprofile == "" {
		return stop, nil
	}
	if err := util.EnsureDir(saveFile); err != nil {
		return stop, err
	}

	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		fmt.Println("Profiling CPU to ", cpuProfPath)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			return stop, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return stop, fmt.Errorf("could not start CPU profile: %w", err)
		}
		stop = func() {
			pprof.StopCPUProfile()
			f.Close()
		}
	}

	if memprofile == "" {
		return stop, nil
	}
	stopCPU := stop
	return func() {
		stopCPU()
		memProfPath := path.Join(saveFile, memprofile)
		fmt.Println("Profiling Memory to ", memProfPath)
		f, err := os.Create(memProfPath)
		if err != nil {
			fmt.Println("could not create memory profile: ", err)
			return
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Println("could not write memory profile: ", err)
		}
	}, nil
}
