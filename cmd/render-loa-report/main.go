package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/reportpdf"
)

func main() {
	inputPath := flag.String("input", "", "Path to response envelope JSON or report markdown")
	outputPath := flag.String("output", "report.pdf", "Path to write the PDF")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	renderer := reportpdf.NewChromiumPDFRenderer()
	pdf, err := renderer.Render(ctx, string(in))
	if err != nil {
		log.Fatalf("render pdf: %v", err)
	}
	if err := os.WriteFile(*outputPath, pdf, 0o644); err != nil {
		log.Fatalf("write pdf: %v", err)
	}
	log.Printf("wrote %s (%d bytes)", *outputPath, len(pdf))
}
