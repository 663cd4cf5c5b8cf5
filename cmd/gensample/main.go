package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"chosenoffset.com/fogofwar/internal/placeholders"
)

func main() {
	dataPath := flag.String("data", "data", "data directory to write the scene into")
	name := flag.String("name", "keep", "scene folder name")
	flag.Parse()

	fmt.Println("Fog of War Sample Scene Generator")
	fmt.Println("=================================")
	fmt.Println()

	dir := filepath.Join(*dataPath, *name)
	if err := placeholders.Generate(dir, placeholders.Keep()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", dir)
	fmt.Println("Run fogofwar -data", *dataPath, "to open it.")
}
