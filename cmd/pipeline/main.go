package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"asi_schedules/pkg/core/config"
	"asi_schedules/pkg/core/docsource"
	"asi_schedules/pkg/core/export"
	"asi_schedules/pkg/core/extract"
	"asi_schedules/pkg/core/llm"
	"asi_schedules/pkg/core/pipeline"
	"asi_schedules/pkg/core/store"
	"asi_schedules/pkg/core/utils"
)

func main() {
	input := flag.String("input", "", "scanned return to process (.pdf, .md or .txt)")
	xlsxOut := flag.String("xlsx", "", "optional workbook path for the finished schedules")
	flag.Parse()

	if *input == "" {
		log.Fatal("Error: -input is required.")
	}

	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("Error: GEMINI_API_KEY is not set.")
	}

	fmt.Println("🚀 Schedule Pipeline Starting...")

	ctx := context.Background()

	var source docsource.ContentSource
	if strings.EqualFold(filepath.Ext(*input), ".pdf") {
		source = docsource.NewPDFSource(*input)
	} else {
		source = docsource.NewFileSource(*input)
	}
	text, err := source.FetchText(ctx)
	if err != nil {
		log.Fatalf("Failed to read document: %v", err)
	}
	text = utils.CleanMarkdown(text)
	if !utils.ValidateMarkdown(text) {
		log.Fatal("Document text did not parse as markdown.")
	}

	reg, err := config.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		log.Fatalf("Failed to load block registry: %v", err)
	}
	templates := config.NewTemplateCatalog(cfg.TemplateDir, reg)

	var repo store.ScheduleStore
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		repo = store.NewPgStore()
	} else {
		repo = store.NewFileStore(cfg.OutputDir)
	}

	provider := &llm.GeminiProvider{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}
	extractor := extract.NewBlockExtractor(provider)

	orch := pipeline.NewOrchestrator(templates, extractor, repo)
	result, err := orch.Run(ctx, text, pipeline.DefaultBlocks())
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	if *xlsxOut != "" {
		var sheets []export.Sheet
		for _, spec := range pipeline.DefaultBlocks() {
			if s, ok := result.Schedules[spec.ID]; ok {
				sheets = append(sheets, export.Sheet{Name: "Block " + string(spec.ID), Schedule: s})
			}
		}
		if err := export.WriteWorkbook(*xlsxOut, sheets); err != nil {
			log.Fatalf("Workbook export failed: %v", err)
		}
	}

	if len(result.Failed) > 0 {
		for id, err := range result.Failed {
			fmt.Printf("⚠️ Block %s did not complete: %v\n", id, err)
		}
	}
	fmt.Printf("✅ Run %s finished: %d schedules\n", result.RunID, len(result.Schedules))
}
