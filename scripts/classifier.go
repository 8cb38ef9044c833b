// Classifier is a stand-in classification backend for local testing of the
// dispatcher and autoscaler. It answers /predict with a canned label after
// a configurable artificial delay, so latency-driven scaling can be
// exercised without a real model.
//
// Usage:
//
//	go run classifier.go -port 5000 -delay 100ms
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"time"
)

var labels = []string{"cat", "dog", "bird", "horse", "ship"}

func main() {
	port := flag.String("port", "5000", "port to listen on")
	delay := flag.Duration("delay", 100*time.Millisecond, "artificial inference delay")
	jitter := flag.Duration("jitter", 50*time.Millisecond, "random extra delay, uniform in [0, jitter)")
	flag.Parse()

	http.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		d := *delay
		if *jitter > 0 {
			d += time.Duration(rand.Int64N(int64(*jitter)))
		}
		time.Sleep(d)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"label":      labels[rand.IntN(len(labels))],
			"confidence": 0.5 + rand.Float64()/2,
		})
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("classifier listening on :%s (delay=%s jitter=%s)", *port, *delay, *jitter)
	log.Fatal(http.ListenAndServe(":"+*port, nil))
}
