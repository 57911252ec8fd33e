package main

import (
	"flag"
	"log"

	"github.com/edward-ap/runningtext/internal/config"
	"github.com/edward-ap/runningtext/internal/runningapp"
	"github.com/edward-ap/runningtext/internal/ui"
)

func main() {
	trace := flag.Bool("traceLog", false, "enable verbose logging of font and feed setup")
	text := flag.String("text", "", "text to scroll instead of the configured one")
	cfgPath := flag.String("config", "", "config file (defaults to the user config directory)")
	flag.Parse()
	ui.SetTraceLogEnabled(*trace)

	var (
		cfg *config.Config
		err error
	)
	if *cfgPath != "" {
		cfg, err = config.LoadFile(*cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Println("config load error:", err)
		cfg = config.Default()
	}
	if *text != "" {
		cfg.Text = *text
	}

	app := runningapp.NewApp(cfg)
	app.Run()
}
