// Command agri-console is a terminal front end for the agriassist server.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"agriassist/client/advice"
	"agriassist/client/api"
	"agriassist/client/search"
	"agriassist/client/transcript"
	"agriassist/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type consoleConfig struct {
	APIBase   string
	Language  models.Language
	AudioFile string
	LogFile   string

	DeviceLat, DeviceLon float64
	HasDevice            bool
}

func loadConsoleConfig() consoleConfig {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("API_BASE", "http://localhost:4000")
	v.SetDefault("LANGUAGE", string(models.LanguageEnglish))
	v.SetDefault("AUDIO_FILE", "")
	v.SetDefault("CONSOLE_LOG_FILE", "agri-console.log")

	cfg := consoleConfig{
		APIBase:   v.GetString("API_BASE"),
		Language:  models.ParseLanguage(v.GetString("LANGUAGE")),
		AudioFile: v.GetString("AUDIO_FILE"),
		LogFile:   v.GetString("CONSOLE_LOG_FILE"),
	}
	if v.IsSet("DEVICE_LAT") && v.IsSet("DEVICE_LON") {
		cfg.DeviceLat = v.GetFloat64("DEVICE_LAT")
		cfg.DeviceLon = v.GetFloat64("DEVICE_LON")
		cfg.HasDevice = true
	}
	return cfg
}

// The alt screen owns stdout, so logs go to a file.
func newConsoleLogger(path string) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}

// programRef lets callbacks wired before the program exists deliver messages once it does.
type programRef struct {
	p atomic.Pointer[tea.Program]
}

func (r *programRef) set(p *tea.Program) {
	r.p.Store(p)
}

// sender returns a send func that never blocks the caller; callbacks may fire inside Update.
func (r *programRef) sender() func(tea.Msg) {
	return func(msg tea.Msg) {
		go func() {
			if p := r.p.Load(); p != nil {
				p.Send(msg)
			}
		}()
	}
}

func main() {
	cfg := loadConsoleConfig()

	logger, err := newConsoleLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agri-console: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program programRef
	send := program.sender()

	client := api.New(cfg.APIBase, api.WithLogger(logger))

	machine := transcript.NewMachine()
	machine.OnCommit(func(text string) { send(committedMsg{Text: text}) })

	var capture *transcript.Capture
	if cfg.AudioFile != "" {
		rec := newFileRecognizer(client, cfg.AudioFile, func() { send(transcriptChangedMsg{}) })
		capture = transcript.NewCapture(rec, machine, logger)
	}

	coord := search.NewCoordinator(ctx, client,
		search.WithLanguage(cfg.Language),
		search.WithLogger(logger),
		search.OnChange(func(search.Session) { send(sessionChangedMsg{}) }),
	)
	defer coord.Close()

	orch := advice.NewOrchestrator(client, client, advice.NotifierFunc(func(message string) {
		logger.Warn("Advice warning", zap.String("message", message))
	}), logger)
	orch.SetLanguage(cfg.Language)

	m := newConsoleModel(ctx, cfg, machine, capture, coord, orch)
	p := tea.NewProgram(m, tea.WithAltScreen())
	program.set(p)

	logger.Info("Console started", zap.String("api", cfg.APIBase), zap.String("language", string(cfg.Language)))
	if _, err := p.Run(); err != nil {
		logger.Error("Console exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "agri-console: %v\n", err)
		os.Exit(1)
	}
}
