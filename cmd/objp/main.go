// objp packs a Wavefront OBJ mesh (v, vn, and f lines only) into a
// JMDL file for fast loading.
//
// Usage:
//
//	objp [flags] input.obj output.jmdl
//
// JMDL stores the resolved corner positions and normals of every face
// as big-endian float32 triples. Optionally, a binary STL copy and a
// binvox outline preview of the mesh can be written alongside.
//
// Options may also be read from a gcfg file with an [objp] section.
// Flags given on the command line override the file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gmlewis/objp/config"
	"github.com/gmlewis/objp/convert"
)

var (
	configFile = flag.String("config", "", "Read options from the [objp] section of this gcfg file")

	trianglesOnly = flag.Bool("triangles", false, "Reject faces that do not have exactly 3 corners")
	writeSTL      = flag.String("stl", "", "Also write the mesh to this binary STL file")
	writeBinvox   = flag.String("binvox", "", "Also write a voxel outline of the mesh to this binvox file")
	res           = flag.Int("res", config.DefaultBinvoxRes, "Binvox resolution along the longest axis")
	verify        = flag.Bool("verify", false, "Decode the packed output and compare it with the parsed mesh")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] input.obj output.jmdl\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	opts := config.Default()
	if *configFile != "" {
		var err error
		opts, err = config.Read(*configFile)
		check("config.Read: %v", err)
	}
	applyFlags(opts)
	check("%v", opts.CheckInit())

	log.Printf("Processing OBJ file %q...", inPath)
	stats, err := convert.Files(inPath, outPath, opts)
	check("convert.Files: %v", err)

	if !stats.Triangles {
		log.Printf("Warning: not all faces are triangles; readers must know the corner count of each face.")
	}
	log.Printf("Wrote %v faces (%v corners, %v bytes) to %v", stats.Faces, stats.Corners, stats.Bytes, outPath)
	log.Println("Done.")
}

// applyFlags copies explicitly set flags over opts.
func applyFlags(opts *config.Options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "triangles":
			opts.TrianglesOnly = *trianglesOnly
		case "stl":
			opts.STL = *writeSTL
		case "binvox":
			opts.Binvox = *writeBinvox
		case "res":
			opts.BinvoxRes = *res
		case "verify":
			opts.Verify = *verify
		}
	})
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
