package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/log"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/web/client"
)

func main() {
	ip := flag.String("ip", "127.0.0.1", "IP del oss")
	port := flag.Int("puerto", 8010, "puerto del oss")
	interval := flag.Duration("intervalo", time.Second, "tiempo real entre consultas")
	times := flag.Int("veces", 0, "cantidad de consultas, 0 para seguir hasta Ctrl+C")
	level := flag.String("nivel", "INFO", "nivel de log")
	flag.Parse()

	logLevel, levelErr := log.ParseLevel(*level)
	slog.SetDefault(log.NewLogger(os.Stderr, logLevel))
	if levelErr != nil {
		slog.Warn(levelErr.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var handshake map[string]string
	if err := client.GetJson(ctx, *port, *ip, "oss", &handshake); err != nil {
		slog.Error(fmt.Sprintf("No se pudo conectar al oss en %s:%d: %v", *ip, *port, err))
		os.Exit(1)
	}
	slog.Info(fmt.Sprintf("Conectado: %s", handshake["mensaje"]))

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for i := 0; *times == 0 || i < *times; i++ {
		if err := poll(ctx, *ip, *port); err != nil {
			slog.Warn(err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll imprime el reloj simulado y el último reporte en texto.
func poll(ctx context.Context, ip string, port int) error {
	var clock models.ClockStatus
	if err := client.GetJson(ctx, port, ip, "oss/reloj", &clock); err != nil {
		return fmt.Errorf("reloj: %w", err)
	}
	fmt.Printf("Reloj simulado: %d:%09d\n", clock.Seconds, clock.Nanoseconds)

	response, err := client.DoRequest(ctx, port, ip, http.MethodGet, "oss/reporte?formato=texto")
	if response != nil {
		defer response.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("reporte: %w", err)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("reporte: %w", err)
	}
	fmt.Print(string(body))
	return nil
}
