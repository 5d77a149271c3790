package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/waribei/unit-economics/internal/app"
	"github.com/waribei/unit-economics/internal/config"
	"github.com/waribei/unit-economics/internal/logging"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/output"
	"github.com/waribei/unit-economics/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	dateFlag := flag.String("date", "", "scenario date (YYYY-MM-DD); a preset registered for it is applied")
	force := flag.Bool("force", false, "re-apply the preset of -date even if it is already loaded")
	quick := flag.String("quick", "", "load the named quick scenario")
	name := flag.String("name", "", "scenario name override")
	save := flag.Bool("save", false, "save the live inputs to the ledger")
	flag.Parse()

	// Environment overrides for secrets such as the redis password
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application, err := app.New(ctx, conf, logger)
	if err != nil {
		logger.Fatal("failed to initialize calculator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = application.Close()
	}()

	s := application.Session
	if *dateFlag != "" {
		date, err := datetime.ParseDate(*dateFlag)
		if err != nil {
			logger.Fatal("invalid -date",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		s.SelectDate(date)
		if *force {
			s.ApplyPreset(date, true)
		}
	}
	if *quick != "" && !s.SelectQuickScenario(*quick) {
		logger.Fatal("unknown quick scenario",
			zap.String("op", "main"),
			zap.String("name", *quick),
		)
	}
	if *name != "" {
		s.SetName(*name)
	}

	st := s.State()
	if outputFormat == constants.OutputFormatPretty {
		fmt.Printf("--- %s ---\n", datetime.Format(st.Date)+constants.IdentitySeparator+st.Name)
		_ = output.WriteMetrics(os.Stdout, st.Assumptions, st.Metrics)
		fmt.Println()
	}

	if *save {
		saved := s.Save()
		if err := application.Persist(ctx); err != nil {
			logger.Fatal("failed to persist scenarios",
				zap.String("op", "main"),
				zap.String("label", saved.Label()),
				zap.Error(err),
			)
		}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(application.Ledger.ListSorted())
	case constants.OutputFormatCSV:
		output.CsvFormat(application.Ledger.ListSorted())
	}
}
