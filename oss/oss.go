package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ossHandler "github.com/sisoputnfrba/tp-oss-paginacion/oss/handlers"
	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
	"github.com/sisoputnfrba/tp-oss-paginacion/oss/services"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/config"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/log"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/web/handlers"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/web/server"
)

const ConfigPath = "oss/configs/oss.json"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		help       bool
		options    models.RunOptions
		configPath string
	)
	flags := flag.NewFlagSet("oss", flag.ContinueOnError)
	flags.BoolVar(&help, "h", false, "muestra esta ayuda")
	flags.IntVar(&options.TotalProcesses, "n", 0, "cantidad total de procesos a lanzar")
	flags.IntVar(&options.MaxSimultaneous, "s", 0, "máximo de procesos simultáneos")
	flags.Uint64Var(&options.LaunchIntervalNanos, "t", 0, "intervalo mínimo entre lanzamientos, en ns simulados")
	flags.StringVar(&options.LogFile, "f", "", "archivo de log")
	flags.StringVar(&configPath, "c", ConfigPath, "archivo de configuración (json o yaml)")
	flags.Usage = func() { usage(flags) }

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 1
	}
	if help {
		usage(flags)
		return 0
	}

	ossConfig := models.DefaultConfig()
	if err := config.LoadConfig(configPath, ossConfig); err != nil {
		fmt.Fprintf(os.Stderr, "oss: %v\n", err)
		return 1
	}
	if err := ossConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "oss: configuración inválida: %v\n", err)
		return 1
	}
	if err := options.Validate(ossConfig.MaxProcesses); err != nil {
		fmt.Fprintf(os.Stderr, "oss: %v\n", err)
		usage(flags)
		return 1
	}

	logFile, err := log.InitLogger(options.LogFile, ossConfig.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oss: %v\n", err)
		return 1
	}
	defer logFile.Close()

	slog.Debug(fmt.Sprintf("Config cargada desde %s", configPath), "config", *ossConfig)

	// SIGINT/SIGTERM y la alarma de tiempo real terminan la simulación con limpieza.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if ossConfig.MaxRealSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ossConfig.MaxRealSeconds)*time.Second)
		defer cancel()
	}

	launcher := services.NewGoroutineLauncher(ossConfig, uint64(time.Now().UnixNano()))
	reporter := services.NewReporter()
	manager := services.NewMemoryManager(ossConfig, options, launcher, reporter)

	serverDone := make(chan struct{})
	serverCtx, stopServer := context.WithCancel(ctx)
	if ossConfig.PortOss > 0 {
		go func() {
			defer close(serverDone)
			/* ----------> ENDPOINTS <----------*/
			mux := http.NewServeMux()
			mux.HandleFunc("GET /oss", handlers.HandshakeHandler("oss", "OSS en funcionamiento"))
			mux.HandleFunc("GET /oss/reloj", ossHandler.ClockHandler(manager.Clock()))
			mux.HandleFunc("GET /oss/reporte", ossHandler.ReportHandler(reporter))

			slog.Debug(fmt.Sprintf("Port OSS: %d", ossConfig.PortOss))
			if err := server.InitServer(serverCtx, ossConfig.PortOss, mux); err != nil {
				slog.Error(fmt.Sprintf("error initializing server: %v", err))
			}
		}()
	} else {
		close(serverDone)
	}

	err = manager.Run(ctx)
	stopServer()
	<-serverDone

	switch {
	case err == nil:
		slog.Info("## OSS: todos los procesos terminaron, saliendo")
		return 0
	case errors.Is(err, context.DeadlineExceeded):
		slog.Info(fmt.Sprintf("## OSS: se cumplieron %d segundos reales, saliendo", ossConfig.MaxRealSeconds))
		return 0
	case errors.Is(err, context.Canceled):
		slog.Info("## OSS: señal recibida, saliendo")
		return 0
	default:
		slog.Error(fmt.Sprintf("## OSS: error fatal: %v", err))
		return 1
	}
}

func usage(flags *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Uso: oss [-h] -n procesos -s simultáneos -t intervalo_ns -f archivo_log [-c config]\n")
	flags.PrintDefaults()
}
