// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/emulator"
)

func main() {
	var compile string
	var binary string
	var output string
	var disassemble bool
	var lenient bool
	var address bool
	var input string
	var script string
	var budget int
	var memory int
	var stack int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&binary, "b", "", ".bin program image to load")
	flag.StringVar(&output, "o", "", "Write the program image to a file, do not execute")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the program to stdout, do not execute")
	flag.BoolVar(&lenient, "lenient", false, "Disassemble undecodable words as .word")
	flag.BoolVar(&address, "addr", false, "Annotate disassembly with addresses")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&script, "script", "", "Input file consumed before the console input")
	flag.IntVar(&budget, "budget", 0, "Maximum instructions to execute, 0 for no limit")
	flag.IntVar(&memory, "mem", 0, "Minimum memory size in words")
	flag.IntVar(&stack, "stack", 0, "Maximum stack depth, 0 for no limit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(compile) == 0) == (len(binary) == 0) {
		log.Fatalf("%v: exactly one of -c or -b is required", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Budget = budget
	emu.MemorySize = memory
	emu.StackLimit = stack

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load an existing image.
	if len(binary) != 0 {
		inf, err := os.Open(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		defer inf.Close()

		_, err = emu.Rom.ReadFrom(inf)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()

		_, err = emu.Rom.WriteTo(ouf)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if disassemble {
		mem, err := cpu.NewMemory(cpu.FromRom(&emu.Rom))
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}

		dis := &cpu.Disassembler{Memory: mem, Lenient: lenient, Address: address}
		_, err = dis.WriteTo(os.Stdout)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		return
	}

	if len(script) != 0 {
		text, err := os.ReadFile(script)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}

		err = emu.Script(string(text))
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}

		// Show the scripted commands when someone is watching.
		emu.Echo = term.IsTerminal(int(os.Stdout.Fd()))
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}
	emu.Tape.Output = os.Stdout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status, err := emu.Run(ctx)
	if verbose {
		log.Printf("%v", status)
	}

	switch {
	case err == nil:
	case errors.Is(err, cpu.ErrInputClosed) && errors.Is(err, io.EOF):
		// Running out of input ends the session.
	default:
		fmt.Fprintf(os.Stderr, "%v: %v\n%v", os.Args[0], err, emu.Cpu)
		stop()
		os.Exit(1)
	}
}
