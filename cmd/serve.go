package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/hotelops/internal/api"
	"github.com/joescharf/hotelops/internal/daemon"
	"github.com/joescharf/hotelops/internal/logger"
	"github.com/joescharf/hotelops/internal/output"
	"github.com/joescharf/hotelops/internal/service"
	"github.com/joescharf/hotelops/internal/stats"
)

var serveDaemon bool

// shutdownTimeout bounds how long in-flight requests get after a stop signal.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the maintenance request API server",
	Long: `Start an HTTP server exposing the maintenance request API.
By default it listens on port 8080. Use --port to change it and
--daemon to run it in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveDaemon {
			return serveStartRun()
		}
		return serveRun(cmd.Context())
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().BoolVarP(&serveDaemon, "daemon", "d", false, "run the server in the background")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), "hotelops-serve.pid"))
}

func serveLogPath() string {
	return filepath.Join(viper.GetString("state_dir"), "hotelops-serve.log")
}

// newAPIServer wires the HTTP API from configuration.
func newAPIServer(log *slog.Logger) (*api.Server, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}

	svc := service.New(s,
		service.WithDefaultReporter(viper.GetString("requests.default_reporter")),
		service.WithLogger(log),
	)

	opts := []api.Option{
		api.WithLogger(log),
		api.WithAllowedOrigins(viper.GetStringSlice("cors.allowed_origins")),
	}
	if c := newTriageClient(); c != nil {
		opts = append(opts, api.WithSuggester(c))
	} else {
		log.Info("triage suggestions disabled (no anthropic.api_key)")
	}

	return api.NewServer(svc, stats.New(s), opts...), nil
}

// serveRun runs the server in the foreground until SIGINT/SIGTERM.
func serveRun(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	port := viper.GetInt("port")

	log := logger.New(viper.GetString("log.level"), viper.GetString("log.format"), os.Stderr)
	slog.SetDefault(log)

	apiSrv, err := newAPIServer(log)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}

	httpSrv := &http.Server{
		Handler:           apiSrv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	pf := pidFile()
	if err := pf.Write(port); err != nil {
		log.Warn("could not write pid file", "path", pf.Path, "error", err)
	}
	defer func() { _ = pf.Remove() }()

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	log.Info("server started", "addr", ln.Addr().String(), "store", viper.GetString("store.driver"))
	ui.Info("Serving API at http://localhost:%d", port)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveStartRun re-executes the binary as a detached `serve` process.
func serveStartRun() error {
	pf := pidFile()
	if rec, running := pf.Status(); running {
		return fmt.Errorf("server already running (pid %d, port %d)", rec.PID, rec.Port)
	}

	port := viper.GetInt("port")
	if dryRun {
		ui.DryRunMsg("Would start server in background on port %d (log: %s)", port, serveLogPath())
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(serveLogPath()), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	logFile, err := os.OpenFile(serveLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"serve", "--port", strconv.Itoa(port)}
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	pid := child.Process.Pid
	_ = child.Process.Release()

	// Wait for the child to record itself
	for range 20 {
		if rec, running := pf.IsRunning(); running && rec.PID == pid {
			ui.Success("Server started in background (pid %d) at http://localhost:%d", pid, port)
			ui.Info("Log: %s", serveLogPath())
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not start; see %s", serveLogPath())
}

func serveStopRun() error {
	pf := pidFile()
	rec, running := pf.Status()
	if !running {
		return fmt.Errorf("server not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop server (pid %d)", rec.PID)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}

	deadline := time.Now().Add(shutdownTimeout + 2*time.Second)
	for time.Now().Before(deadline) {
		if _, alive := pf.IsRunning(); !alive {
			_ = pf.Remove()
			ui.Success("Server stopped (pid %d)", rec.PID)
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	ui.Warning("Server did not exit in time; killing pid %d", rec.PID)
	if err := pf.Signal(sigKILL()); err != nil {
		return fmt.Errorf("kill server: %w", err)
	}
	_ = pf.Remove()
	return nil
}

func serveStatusRun() error {
	rec, running := pidFile().Status()
	if !running {
		ui.Info("Server not running")
		return nil
	}

	ui.Success("Server running (pid %d)", rec.PID)
	if rec.Port > 0 {
		fmt.Fprintf(ui.Out, "  URL:      http://localhost:%d\n", rec.Port)
	}
	if !rec.StartedAt.IsZero() {
		fmt.Fprintf(ui.Out, "  Started:  %s (%s)\n", rec.StartedAt.Local().Format(time.RFC3339), output.Since(rec.StartedAt, time.Now()))
	}
	fmt.Fprintf(ui.Out, "  Log:      %s\n", serveLogPath())
	return nil
}
