package workers

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"goxchain/config"
	"goxchain/workers/handlers"
)

// NewRouter wires the API routes; static files are served from ./app when present
func NewRouter(h *handlers.Handler, gatherer prometheus.Gatherer, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Options("/*", CORSHeaders)

	r.Get("/state", h.State)
	r.Get("/health", h.HealthCheck)

	r.Get("/messages", h.GetMessages)
	r.Get("/messages/{id}", h.GetMessage)
	r.Post("/messages", h.SubmitMessage)

	r.Get("/transactions", h.GetTransactions)
	r.Get("/transactions/{id}", h.GetTransaction)
	r.Post("/transactions", h.SubmitTransfer)

	r.Get("/balances", h.Balances)
	r.Get("/balances/total/{token}", h.BalanceTotal)

	r.Get("/networks", h.Networks)
	r.Get("/tokens", h.Tokens)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// a bit of logic to prevent directory listing
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		workDir, _ := os.Getwd()
		filesDir := filepath.Join(workDir, "app")
		filePath := filepath.Join(filesDir, filepath.Clean("/"+r.URL.Path))

		fileInfo, err := os.Stat(filePath)
		if err != nil || fileInfo.IsDir() {
			filePath = filepath.Join(filesDir, "index.html")
			fileInfo, err = os.Stat(filePath)
			if err != nil {
				http.NotFound(w, r)
				return
			}
		}

		file, err := os.Open(filePath)
		if err != nil {
			http.Error(w, "unable to open", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		http.ServeContent(w, r, file.Name(), fileInfo.ModTime(), file)
	})

	return r
}

// Worker_HTTP serves until SIGINT/SIGTERM, then tells the other workers to exit
func Worker_HTTP(cfg config.Configuration, handler http.Handler, log *zap.Logger) error {
	log.Info("Starting HTTP service", zap.String("addr", cfg.Server.Addr), zap.Bool("ssl", cfg.Server.UseSSL))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.UseSSL {
		cert, err := tls.LoadX509KeyPair(cfg.Server.CertFile, cfg.Server.KeyFile)
		if err != nil {
			return err
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	serveErr := make(chan error, 1)
	go func() {
		var err error
		if cfg.Server.UseSSL {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Info("HTTP service started")

	// send signal to other threads/workers to exit
	defer Shutdown()

	select {
	case <-done:
		log.Info("HTTP service stopped")
	case err := <-serveErr:
		log.Error("Error listening", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP service shutdown error", zap.Error(err))
		return err
	}
	log.Info("HTTP service shutdown normal")
	return nil
}

func CORSHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, X-Requested-With")
}
