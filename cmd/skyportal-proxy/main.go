// skyportal proxy
// Re-serves ADSB.lol point queries with the response pre-filtered down to
// airborne traffic, so memory-constrained displays never hold ground
// clutter. The wire shape is unchanged: clients built for ADSB.lol work
// against the proxy as-is.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"skyportal/pkg/adsb"
)

var (
	port        = flag.Int("port", 8080, "HTTP server port")
	upstream    = flag.String("upstream", adsb.AdsbLolURLBase, "Upstream ADSB.lol API root")
	minInterval = flag.Duration("min-interval", time.Second, "Minimum interval between upstream calls")
)

// Server proxies point queries to ADSB.lol, sharing one rate-limited HTTP
// client across all callers.
type Server struct {
	router   *chi.Mux
	upstream string
	client   *http.Client
	limiter  *rate.Limiter
}

func main() {
	flag.Parse()

	log.Println("Starting skyportal proxy...")

	srv := &Server{
		router:   chi.NewRouter(),
		upstream: *upstream,
		client:   &http.Client{Timeout: adsb.DefaultTimeout},
		limiter:  rate.NewLimiter(rate.Every(*minInterval), 1),
	}
	srv.routes()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      srv.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Proxy listening on :%d (upstream %s)", *port, *upstream)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	s.router.Get("/v2/lat/{lat}/lon/{lon}/dist/{radius}", s.handlePointQuery)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// handlePointQuery forwards the query upstream and strips the response down
// to airborne aircraft before re-serving it.
func (s *Server) handlePointQuery(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	lon, err2 := strconv.ParseFloat(chi.URLParam(r, "lon"), 64)
	radius, err3 := strconv.Atoi(chi.URLParam(r, "radius"))
	if err1 != nil || err2 != nil || err3 != nil {
		http.Error(w, "lat, lon, and radius must be numeric", http.StatusBadRequest)
		return
	}

	if err := s.limiter.Wait(r.Context()); err != nil {
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	url := fmt.Sprintf("%s/lat/%g/lon/%g/dist/%d", s.upstream, lat, lon, radius)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		http.Error(w, "failed to build upstream request", http.StatusInternalServerError)
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Upstream request failed: %v", err)
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Upstream returned %d", resp.StatusCode)
		http.Error(w, fmt.Sprintf("upstream returned %d", resp.StatusCode), http.StatusBadGateway)
		return
	}

	var payload struct {
		Now float64          `json:"now"`
		AC  []map[string]any `json:"ac"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		http.Error(w, "unparseable upstream payload", http.StatusBadGateway)
		return
	}

	out := map[string]any{
		"now": payload.Now,
		"ac":  simplifyAircraft(payload.AC),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// simplifyAircraft drops non-airborne records. Ground traffic dominates the
// response at busy airports and the displays cull it anyway; filtering here
// keeps it off the wire entirely.
func simplifyAircraft(records []map[string]any) []map[string]any {
	airborne := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if alt, ok := rec["alt_baro"].(string); ok && alt == "ground" {
			continue
		}
		airborne = append(airborne, rec)
	}
	return airborne
}
