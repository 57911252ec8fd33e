// Command runningterm scrolls a running text across the middle of the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/edward-ap/runningtext/internal/config"
	"github.com/edward-ap/runningtext/internal/feed"
	"github.com/edward-ap/runningtext/internal/term"
)

func main() {
	text := flag.String("text", config.DefaultText, "text to scroll")
	speed := flag.Float64("speed", 1, "columns per frame")
	spacing := flag.Float64("spacing", 6, "columns between repetitions")
	source := flag.String("source", "", "feed to follow: stream URL, file:path or text:value")
	fps := flag.Int("fps", 10, "frames per second")
	fade := flag.Int("fade", 2, "dimmed columns at each edge")
	logPath := flag.String("log", "", "write log output to this file")
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		// the screen owns stdout and stderr while running
		log.SetOutput(io.Discard)
	}

	var src feed.Source
	if *source != "" {
		s, err := feed.Parse(*source, nil, log.Default())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		src = s
	}
	if *fps <= 0 {
		*fps = 10
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = term.Run(ctx, screen, term.Options{
		Text:     *text,
		Speed:    float32(*speed),
		Spacing:  float32(*spacing),
		Fade:     *fade,
		Interval: time.Second / time.Duration(*fps),
		Source:   src,
	})
	if err != nil {
		log.Println("run:", err)
	}
}
