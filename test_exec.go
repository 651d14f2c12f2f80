package main

import (
	"bigsmall-bot/internal/ensemble"
	"bigsmall-bot/internal/feed"
	"bigsmall-bot/internal/predict"
	"bigsmall-bot/internal/tracker"
)

func main() {
	// This should compile if the signature is correct
	var c *feed.Client

	_ = predict.New(c, ensemble.New(), tracker.New())
}
