package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/loacheck"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/ocr"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/vision"
)

func main() {
	caseID := flag.String("case", "", "Case ID")
	region := flag.String("region", "", "Region (Great Lakes or New England)")
	state := flag.String("state", "", "Two-letter state code")
	udc := flag.String("udc", "", "Utility company code")
	accountName := flag.String("account-name", "", "Customer name on the account")
	accounts := flag.String("accounts", "", "Comma-separated expected account numbers")
	textPath := flag.String("text", "", "Path to document text file")
	layoutPath := flag.String("layout", "", "Path to OCR layout JSON")
	imagePath := flag.String("image", "", "Path to page image PNG (enables vision date extraction)")
	outputPath := flag.String("output", "", "Path to write response envelope JSON (defaults to stdout)")
	reportPath := flag.String("report", "", "Optional path to write report markdown")
	flag.Parse()

	if *caseID == "" || *region == "" {
		log.Fatal("missing required -case and -region")
	}

	req := loacheck.RequestEnvelope{
		CaseID:      *caseID,
		Region:      *region,
		State:       *state,
		UDC:         *udc,
		AccountName: *accountName,
	}
	for _, acc := range strings.Split(*accounts, ",") {
		if v := strings.TrimSpace(acc); v != "" {
			req.Accounts = append(req.Accounts, v)
		}
	}
	if *textPath != "" {
		b, err := os.ReadFile(*textPath)
		if err != nil {
			log.Fatalf("read text: %v", err)
		}
		req.DocumentText = string(b)
	}
	if *layoutPath != "" {
		b, err := os.ReadFile(*layoutPath)
		if err != nil {
			log.Fatalf("read layout: %v", err)
		}
		var layout ocr.AnalyzeResult
		if err := json.Unmarshal(b, &layout); err != nil {
			log.Fatalf("decode layout JSON: %v", err)
		}
		req.Layout = &layout
	}
	if *imagePath != "" {
		b, err := os.ReadFile(*imagePath)
		if err != nil {
			log.Fatalf("read image: %v", err)
		}
		req.PageImage = b
	}

	var extractor loacheck.SignatureDateExtractor
	if len(req.PageImage) > 0 {
		caller, err := vision.NewAnthropicCallerFromEnv()
		if err != nil {
			log.Fatalf("vision setup: %v", err)
		}
		extractor = loacheck.NewVisionDateExtractor(vision.NewExecutor(caller))
	}

	pipeline := loacheck.NewPipeline(extractor)
	env, err := pipeline.Run(context.Background(), req)
	if err != nil {
		log.Fatalf("validate: %v", err)
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		log.Fatalf("encode response: %v", err)
	}
	if *outputPath == "" {
		fmt.Println(string(out))
	} else if err := os.WriteFile(*outputPath, out, 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, []byte(env.ReportMarkdown), 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
	}

	log.Printf("case %s: %s (%d rejection reasons)", env.CaseID, env.Decision, len(env.RejectionReasons))
	if env.Decision == loacheck.DecisionReject {
		os.Exit(1)
	}
}
