package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/nescore/nescore/pkg/cartridge"
	"github.com/nescore/nescore/pkg/frame"
	"github.com/nescore/nescore/pkg/gui"
	"github.com/nescore/nescore/pkg/logger"
	"github.com/nescore/nescore/pkg/nes"
	"github.com/nescore/nescore/pkg/savestate"
)

// Global debug flag
var DebugMode bool

func main() {
	// Define command line flags
	var (
		logLevel   = flag.String("log-level", "info", "Log level (off, error, warn, info, debug, trace)")
		logFile    = flag.String("log-file", "", "Log file path (empty for stdout)")
		cpuLog     = flag.Bool("cpu-log", false, "Enable CPU instruction logging")
		ppuLog     = flag.Bool("ppu-log", false, "Enable PPU logging")
		apuLog     = flag.Bool("apu-log", false, "Enable APU logging")
		mapperLog  = flag.Bool("mapper-log", false, "Enable mapper logging")
		headless   = flag.Bool("headless", false, "Run in headless mode for testing")
		testFrames = flag.Int("test-frames", 600, "Number of frames to run in headless mode")
		debugMode  = flag.Bool("debug", false, "Enable extra debug output (reduces performance)")
	)

	flag.Usage = func() {
		fmt.Printf("Usage: %s [options] <rom_file>\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println("\nControls:")
		fmt.Println("  Z - A button")
		fmt.Println("  X - B button")
		fmt.Println("  A - Select")
		fmt.Println("  S - Start")
		fmt.Println("  Arrow keys - D-pad")
		fmt.Println("  F5 - Save state")
		fmt.Println("  F9 - Load state")
		fmt.Println("  ESC - Quit")
	}

	flag.Parse()

	// Check if ROM file is provided
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	romFile := flag.Arg(0)

	// Initialize logger
	level := logger.GetLogLevelFromString(*logLevel)
	err := logger.Initialize(level, *logFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	// Configure component logging
	logger.SetCPULogging(*cpuLog)
	logger.SetPPULogging(*ppuLog)
	logger.SetAPULogging(*apuLog)
	logger.SetMapperLogging(*mapperLog)

	// Set global debug mode
	DebugMode = *debugMode

	logger.LogInfo("GoNES Emulator starting...")
	logger.LogInfo("Log level: %s", *logLevel)
	if *logFile != "" {
		logger.LogInfo("Logging to file: %s", *logFile)
	}

	// Check if file exists
	if _, err := os.Stat(romFile); os.IsNotExist(err) {
		log.Fatalf("ROM file not found: %s", romFile)
	}

	// Load cartridge
	romData, err := os.ReadFile(romFile)
	if err != nil {
		log.Fatalf("Failed to read ROM file: %v", err)
	}

	cart, err := cartridge.LoadFromReader(bytes.NewReader(romData))
	if err != nil {
		logger.LogError("Failed to load ROM: %v", err)
		log.Fatalf("Failed to load ROM: %v", err)
	}
	romChecksum := savestate.ROMChecksum(romData)

	mapperNumber := (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)

	logger.LogInfo("Loaded ROM: %s", filepath.Base(romFile))
	logger.LogInfo("Mapper: %d", mapperNumber)
	logger.LogInfo("PRG ROM: %d KB", len(cart.PRGROM)/1024)
	if len(cart.CHRROM) > 0 {
		logger.LogInfo("CHR ROM: %d KB", len(cart.CHRROM)/1024)
	} else {
		logger.LogInfo("CHR RAM: %d KB", len(cart.CHRRAM)/1024)
	}

	// Create NES system
	logger.LogInfo("Creating NES system...")
	nesSystem := nes.New()
	nesSystem.LoadCartridge(cart)
	nesSystem.Reset()
	logger.LogInfo("NES system initialized")

	if *headless {
		// Run in headless mode
		runHeadless(nesSystem, *testFrames)
	} else {
		// Create and run GUI
		logger.LogInfo("Creating GUI...")
		nesGUI, err := gui.NewNESGUI(nesSystem)
		if err != nil {
			logger.LogError("Failed to create GUI: %v", err)
			log.Fatalf("Failed to create GUI: %v", err)
		}
		defer nesGUI.Destroy()

		if states, err := savestate.NewManager("saves", 10); err != nil {
			logger.LogError("Save states disabled: %v", err)
		} else {
			nesGUI.SetSaveStates(states, romChecksum)
		}

		logger.LogInfo("Starting emulator...")
		// Run the emulator
		nesGUI.Run()
		logger.LogInfo("Emulator stopped")
	}
}

func runHeadless(nesSystem *nes.NES, maxFrames int) {
	logger.LogInfo("Starting headless mode for %d frames", maxFrames)

	startTime := time.Now()

	for frame := 0; frame < maxFrames; frame++ {
		// Run one frame
		nesSystem.StepFrame()
	}

	elapsed := time.Since(startTime)
	logger.LogInfo("Headless execution completed in %v", elapsed)

	// Final frame analysis
	analyzeFrameBuffer(nesSystem.GetFrame().GetBuffer(), maxFrames-1)
}

func saveFrameBuffer(pixels []frame.RGB, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		logger.LogError("Error creating file %s: %v", filename, err)
		return
	}
	defer file.Close()

	for _, p := range pixels {
		file.Write([]byte{p.R, p.G, p.B})
	}

	logger.LogInfo("Frame buffer saved: %s (%d bytes)", filename, len(pixels)*3)
}

func analyzeFrameBuffer(pixels []frame.RGB, frameNum int) {
	pixelCounts := make(map[frame.RGB]int)
	totalPixels := len(pixels)

	for _, p := range pixels {
		pixelCounts[p]++
	}

	logger.LogInfo("Frame %d analysis:", frameNum)
	logger.LogInfo("  Total pixels: %d", totalPixels)
	logger.LogInfo("  Unique colors: %d", len(pixelCounts))

	for color, count := range pixelCounts {
		percentage := float64(count) / float64(totalPixels) * 100
		if percentage > 1.0 {
			logger.LogInfo("  Color #%02X%02X%02X: %d pixels (%.1f%%)", color.R, color.G, color.B, count, percentage)
		}
	}

	background := frame.RGB{R: 0x20, G: 0x20, B: 0x20}
	nonBgCount := 0
	for color, count := range pixelCounts {
		if color != background {
			nonBgCount += count
		}
	}

	if nonBgCount > 0 {
		logger.LogInfo("  Non-background pixels: %d (%.1f%%)",
			nonBgCount, float64(nonBgCount)/float64(totalPixels)*100)
	} else {
		logger.LogInfo("  All pixels are background color")
	}
}
