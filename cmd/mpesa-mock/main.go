package main

import (
	"log"
	"net/http"
	"os"
	"time"
)

const (
	defaultAddr          = ":8085"
	defaultCallbackDelay = 3 * time.Second
)

func main() {
	addr := os.Getenv("MOCK_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	delay := defaultCallbackDelay
	if v := os.Getenv("MOCK_CALLBACK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid MOCK_CALLBACK_DELAY: %v", err)
		}
		delay = d
	}

	mux := http.NewServeMux()
	NewDaraja(NewSender(defaultTimeout), delay).Routes(mux)

	log.Printf("Daraja mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, countMiddleware(loggingMiddleware(mux))))
}
