// Command license-registry serves canned registry responses for local runs
// and the e2e suite. It speaks the cedula-mx and state board shapes.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

var cedulas = map[string]map[string]any{
	"1234567": {
		"nombre": "Ana", "paterno": "Ruiz", "materno": "Garcia",
		"desins": "UNAM", "titulo": "MEDICO CIRUJANO", "anioreg": "2012",
	},
}

var boardLicenses = map[string]map[string]any{
	"A123456": {
		"licensee":  map[string]any{"full_name": "Morgan Patel"},
		"license":   map[string]any{"number": "A123456", "status": "active", "expires_on": "2028-06-30"},
		"education": map[string]any{"school": "UCSF", "degree": "MD", "graduation_year": 2010},
	},
}

func main() {
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8090"
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cedula/{number}", func(w http.ResponseWriter, r *http.Request) {
		items := []any{}
		if rec, ok := cedulas[r.PathValue("number")]; ok {
			items = append(items, rec)
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})
	mux.HandleFunc("GET /board/{state}/{number}", func(w http.ResponseWriter, r *http.Request) {
		rec, ok := boardLicenses[strings.ToUpper(r.PathValue("number"))]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "license not found"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info("license registry mock listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
