package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nescore/nescore/pkg/cartridge"
	"github.com/nescore/nescore/pkg/logger"
	"github.com/nescore/nescore/pkg/nes"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: headless_debug <rom_file> [frames]")
		os.Exit(1)
	}

	romFile := os.Args[1]
	maxFrames := 10
	if len(os.Args) >= 3 {
		fmt.Sscanf(os.Args[2], "%d", &maxFrames)
	}

	err := logger.Initialize(logger.LogLevelDebug, "")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	file, err := os.Open(romFile)
	if err != nil {
		log.Fatalf("Failed to open ROM file: %v", err)
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReader(file)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	mapperNumber := (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)
	logger.LogInfo("=== Headless Debug Mode ===")
	logger.LogInfo("ROM: %s", romFile)
	logger.LogInfo("Mapper: %d", mapperNumber)
	logger.LogInfo("Max frames to run: %d", maxFrames)

	nesSystem := nes.New()
	nesSystem.LoadCartridge(cart)
	nesSystem.Reset()

	logger.LogInfo("=== Initial State ===")
	logger.LogInfo("Frame: %d", nesSystem.FrameNumber())
	logger.LogInfo("Cycles: %d", nesSystem.Cycles)

	logger.LogInfo("=== Starting Emulation ===")
	startTime := time.Now()

	for i := 0; i < maxFrames; i++ {
		frameStart := time.Now()

		// Uncomment to press START at frame 5 instead of idling on the title screen:
		// if i == 5 {
		//	nesSystem.Controller1.SetButton(3, true)
		// }
		// if i == 6 {
		//	nesSystem.Controller1.SetButton(3, false)
		// }

		nesSystem.StepFrame()

		frameTime := time.Since(frameStart)

		logger.LogInfo("Frame %d completed in %v", nesSystem.FrameNumber(), frameTime)
		logger.LogInfo("  Total cycles: %d", nesSystem.Cycles)

		if i == 0 {
			printPPUState(nesSystem)
		}

		buffer := nesSystem.GetFrame().GetBuffer()
		backdrop := buffer[0]
		nonBgPixels := 0
		for _, p := range buffer {
			if p != backdrop {
				nonBgPixels++
			}
		}
		logger.LogInfo("  Non-backdrop pixels in frame: %d", nonBgPixels)

		if i == maxFrames-1 {
			logger.LogInfo("  Saving final frame...")
			saveFrame(nesSystem.GetFrame().GetRGBABytes(), fmt.Sprintf("debug_frame_%d.raw", nesSystem.FrameNumber()))
		}
	}

	totalTime := time.Since(startTime)
	logger.LogInfo("=== Final Results ===")
	logger.LogInfo("Completed %d frames in %v", nesSystem.FrameNumber(), totalTime)
	logger.LogInfo("Average frame time: %v", totalTime/time.Duration(maxFrames))
	logger.LogInfo("Final cycle count: %d", nesSystem.Cycles)
}

func printPPUState(nesSystem *nes.NES) {
	logger.LogInfo("  PPU State:")
	logger.LogInfo("    Frame: %d, Scanline: %d, Cycle: %d",
		nesSystem.PPU.Frame, nesSystem.PPU.Scanline, nesSystem.PPU.Cycle)
	logger.LogInfo("    PPUCTRL: 0x%02X, PPUMASK: 0x%02X, PPUSTATUS: 0x%02X",
		nesSystem.PPU.PPUCTRL, nesSystem.PPU.PPUMASK, nesSystem.PPU.PPUSTATUS)

	bgEnabled := nesSystem.PPU.PPUMASK&0x08 != 0
	spriteEnabled := nesSystem.PPU.PPUMASK&0x10 != 0
	logger.LogInfo("    Rendering: BG=%v, Sprites=%v", bgEnabled, spriteEnabled)

	nmiEnabled := nesSystem.PPU.PPUCTRL&0x80 != 0
	logger.LogInfo("    NMI Enabled: %v, NMI Requested: %v", nmiEnabled, nesSystem.PPU.NMIRequested)
}

func saveFrame(rgba []uint8, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		logger.LogError("Error creating frame file: %v", err)
		return
	}
	defer file.Close()

	if _, err := file.Write(rgba); err != nil {
		logger.LogError("Error writing frame: %v", err)
		return
	}

	logger.LogInfo("  Frame saved to %s (%d bytes)", filename, len(rgba))
}
