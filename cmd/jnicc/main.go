package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Project-NexOS/art/pkg/dex"
	"github.com/Project-NexOS/art/pkg/ir"
	"github.com/Project-NexOS/art/pkg/jni"
	"github.com/Project-NexOS/art/pkg/runtime"
)

func parseISA(name string) (jni.InstructionSet, error) {
	switch name {
	case "arm":
		return jni.ISAArm, nil
	case "thumb2":
		return jni.ISAThumb2, nil
	case "x86":
		return jni.ISAX86, nil
	case "mips":
		return jni.ISAMips, nil
	}
	return jni.ISANone, fmt.Errorf("unknown instruction set %q", name)
}

func main() {
	isaName := flag.String("isa", "thumb2", "target instruction set (arm, thumb2, x86, mips)")
	elfIndex := flag.Int("elf", 0, "ELF placement index of the compilation unit")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: jnicc [-isa set] [-elf index] <methods.yaml>\n")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	isa, err := parseISA(*isaName)
	if err != nil {
		logger.Fatal("bad instruction set", zap.Error(err))
	}

	table, err := dex.LoadTable(flag.Arg(0))
	if err != nil {
		logger.Fatal("loading method table", zap.Error(err))
	}

	module := ir.NewModule(flag.Arg(0))
	unit := jni.NewCompilationUnit(isa, *elfIndex, module, runtime.DefaultOffsets())

	compiled := 0
	for idx := uint32(0); idx < uint32(table.NumMethods()); idx++ {
		method, err := table.ResolveMethod(idx)
		if err != nil {
			logger.Fatal("resolving method", zap.Uint32("index", idx), zap.Error(err))
		}
		if !method.IsNative() {
			continue
		}

		c, err := jni.NewCompiler(unit, table, idx)
		if err != nil {
			logger.Fatal("creating stub compiler",
				zap.String("method", method.FullName()),
				zap.Error(err))
		}
		stub, err := c.Compile()
		if err != nil {
			logger.Fatal("lowering native method",
				zap.String("method", method.FullName()),
				zap.Error(err))
		}
		compiled++
		logger.Info("lowered native method",
			zap.String("method", method.FullName()),
			zap.String("shorty", method.Shorty),
			zap.String("stub", stub.Func.Name),
			zap.Int("instructions", len(stub.Func.Body)))
	}

	logger.Info("compilation unit done",
		zap.String("isa", isa.String()),
		zap.Int("elf", *elfIndex),
		zap.Int("stubs", compiled))
}
