// Command feedpeek prints every text update a feed produces, one per line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/edward-ap/runningtext/internal/feed"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: feedpeek <stream-url | file:path | text:value>")
		return
	}
	logger := log.New(os.Stderr, "feedpeek: ", log.LstdFlags)

	src, err := feed.Parse(os.Args[1], nil, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if src == nil {
		logger.Fatal("empty source")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = src.Watch(ctx, func(text string) {
		fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), text)
	})
	if err != nil && ctx.Err() == nil {
		logger.Fatal(err)
	}
}
