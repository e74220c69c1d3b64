package main

import (
	"log"

	"github.com/MrSnakeDoc/auramark/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ auramark failed to start: %v", err)
	}
}
