// maptool is a CLI utility for inspecting Ragnarok Online map files
// and reconstructing their terrain geometry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/internal/assets"
	"github.com/CrowSerainance/Ragnarok-Editor-sub001/internal/config"
	"github.com/CrowSerainance/Ragnarok-Editor-sub001/internal/engine/terrain"
	"github.com/CrowSerainance/Ragnarok-Editor-sub001/internal/logger"
	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/formats"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		cmdInfo(args[1:])
	case "mesh":
		cmdMesh(cfg, args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`maptool - Ragnarok Online map file utility

Usage:
  maptool [flags] <command> [arguments]

Commands:
  info <file>        Show file summary (.gnd, .rsw or .gat)
  mesh <file.gnd>    Build terrain geometry and report batch statistics

Flags:
  -config <path>     Config file
  -data <dir>        Game data directory for texture lookup
  -bake-size <n>     Baked texture resolution
  -workers <n>       Lightmap bake worker count
  -debug             Debug logging

Examples:
  maptool info prontera.rsw
  maptool -data ./data mesh prontera.gnd`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: maptool info <file>")
		os.Exit(1)
	}

	path := args[0]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gnd":
		infoGND(path)
	case ".rsw":
		infoRSW(path)
	case ".gat":
		infoGAT(path)
	default:
		fmt.Fprintf(os.Stderr, "Unsupported file type: %s\n", path)
		os.Exit(1)
	}
}

func infoGND(path string) {
	gnd, err := formats.ParseGNDFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	min, max := gnd.HeightRange()
	fmt.Printf("Ground:    %s\n", path)
	fmt.Printf("Version:   %s\n", gnd.Version)
	fmt.Printf("Grid:      %dx%d tiles (scale %.1f)\n", gnd.Width, gnd.Height, gnd.Scale)
	fmt.Printf("Textures:  %d\n", len(gnd.Textures))
	fmt.Printf("Surfaces:  %d\n", len(gnd.Surfaces))
	fmt.Printf("Heights:   %.1f .. %.1f\n", min, max)
	if gnd.Lightmaps != nil {
		fmt.Printf("Lightmaps: %d cells of %dx%d\n",
			gnd.Lightmaps.Count, gnd.Lightmaps.CellWidth, gnd.Lightmaps.CellHeight)
	}
	if gnd.Water != nil {
		fmt.Printf("Water:     level %.1f type %d\n", gnd.Water.Level, gnd.Water.Type)
	}
}

func infoRSW(path string) {
	rsw, err := formats.ParseRSWFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("World:     %s\n", path)
	fmt.Printf("Version:   %s\n", rsw.Version)
	fmt.Printf("Ground:    %s\n", rsw.GndFile)
	fmt.Printf("Altitude:  %s\n", rsw.GatFile)
	fmt.Printf("Objects:   %d\n", len(rsw.Objects))
	for tag, count := range rsw.CountByType() {
		fmt.Printf("  %-8s %d\n", tag, count)
	}
	if rsw.Light != nil {
		fmt.Printf("Sun:       longitude %d latitude %d\n", rsw.Light.Longitude, rsw.Light.Latitude)
	}
}

func infoGAT(path string) {
	gat, err := formats.ParseGATFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Altitude:  %s\n", path)
	fmt.Printf("Version:   %.2f\n", gat.Version)
	fmt.Printf("Grid:      %dx%d cells\n", gat.Width, gat.Height)
	for cellType, count := range gat.CountByType() {
		fmt.Printf("  %-15s %d\n", cellType, count)
	}
}

func cmdMesh(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: maptool mesh <file.gnd>")
		os.Exit(1)
	}

	gnd, err := formats.ParseGNDFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	source := assets.NewSource(cfg.Data.Roots...)
	start := time.Now()
	mesh, err := terrain.BuildMesh(context.Background(), gnd, terrain.BuildOptions{
		Resolve:  source.Resolve,
		BakeSize: cfg.Bake.Size,
		Workers:  cfg.Bake.Workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("terrain built",
		zap.String("file", args[0]),
		zap.Duration("elapsed", time.Since(start)))

	fallbacks := 0
	for i := range mesh.Batches {
		if mesh.Batches[i].Fallback {
			fallbacks++
		}
	}

	fmt.Printf("Mesh:      %s\n", args[0])
	fmt.Printf("Batches:   %d (%d without texture)\n", len(mesh.Batches), fallbacks)
	fmt.Printf("Vertices:  %d\n", mesh.VertexCount())
	fmt.Printf("Triangles: %d\n", mesh.TriangleCount())
	fmt.Printf("Bounds:    (%.1f, %.1f, %.1f) .. (%.1f, %.1f, %.1f)\n",
		mesh.Bounds.Min[0], mesh.Bounds.Min[1], mesh.Bounds.Min[2],
		mesh.Bounds.Max[0], mesh.Bounds.Max[1], mesh.Bounds.Max[2])

	if hits, misses := source.CacheStats(); hits+misses > 0 {
		fmt.Printf("Textures:  %d cache hits, %d misses\n", hits, misses)
	}
}
