// The consumer tails the room event journal and serves aggregate counts as
// Prometheus metrics, one process per ops dashboard. It is independent of
// the dispatch server and safe to run zero or many of.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/example/ride-dispatch/internal/ingest"
	"github.com/example/ride-dispatch/internal/logging"
)

var (
	msgsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "journal_consumer_messages_total",
		Help: "Journal messages consumed",
	})
	msgsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "journal_consumer_invalid_total",
		Help: "Journal messages that failed to parse",
	})
	eventsByType = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_consumer_events_total",
		Help: "Journal events by room and event type",
	}, []string{"room", "event"})
)

func init() {
	prometheus.MustRegister(msgsConsumed, msgsInvalid, eventsByType)
}

// tally tracks per-room event counts for the /rooms debug endpoint.
type tally struct {
	mu    sync.Mutex
	rooms map[string]map[string]int64
}

func newTally() *tally {
	return &tally{rooms: make(map[string]map[string]int64)}
}

// apply records one raw journal message into the tally and the metrics.
func (t *tally) apply(value []byte) (*ingest.Envelope, error) {
	var env ingest.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, err
	}
	if env.Room == "" || env.Event == "" {
		return nil, errors.New("envelope missing room or event")
	}
	t.mu.Lock()
	byEvent := t.rooms[env.Room]
	if byEvent == nil {
		byEvent = make(map[string]int64)
		t.rooms[env.Room] = byEvent
	}
	byEvent[env.Event]++
	t.mu.Unlock()
	eventsByType.WithLabelValues(env.Room, env.Event).Inc()
	return &env, nil
}

func (t *tally) snapshot() map[string]map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]map[string]int64, len(t.rooms))
	for room, byEvent := range t.rooms {
		dup := make(map[string]int64, len(byEvent))
		for ev, n := range byEvent {
			dup[ev] = n
		}
		out[room] = dup
	}
	return out
}

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	log := logging.New(os.Getenv("LOG_LEVEL"))

	brokers := splitList(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "room-events"
	}
	group := os.Getenv("KAFKA_GROUP")
	if group == "" {
		group = "ride-dispatch-consumer"
	}

	stats := newTally()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(stats.snapshot())
		})
		log.Info("metrics listening", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Warn("metrics server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers, Topic: topic, GroupID: group,
		MinBytes: 10e3, MaxBytes: 10e6,
	})
	defer r.Close()

	log.Info("consuming", "topic", topic, "brokers", fmt.Sprint(brokers), "group", group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutting down")
				return
			}
			log.Warn("read failed", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second
		msgsConsumed.Inc()

		if _, err := stats.apply(m.Value); err != nil {
			msgsInvalid.Inc()
			log.Warn("invalid envelope", "error", err)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
