package main

import (
	"log"

	_ "go.uber.org/automaxprocs"

	"prize_wheel/internal/app"
)

func main() {
	a := app.NewApp()
	if err := a.Run(); err != nil {
		log.Fatalf("app stopped: %v", err)
	}
}
