package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// InitLogger permite loguear tanto en consola como en archivo según el nivel que se le pase.
// Devuelve el archivo abierto para que el llamador lo cierre al terminar.
//
// Parámetros:
//   - logPath: la ubicación donde se va encontrar el archivo (flag -f del oss)
//   - logLevel: nivel de logueo, este dato viene definido en el archivo de config.
//
// Ejemplo:
//
//	func main() {
//		logFile, err := log.InitLogger("./oss.log", "INFO")
//		if err != nil {
//			panic(err)
//		}
//		defer logFile.Close()
//	}
func InitLogger(logPath string, logLevel string) (io.Closer, error) {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir el archivo de log %s: %w", logPath, err)
	}

	// Consola y archivo a la vez.
	multiWriter := io.MultiWriter(os.Stdout, logFile)

	level, levelErr := ParseLevel(logLevel)
	slog.SetDefault(NewLogger(multiWriter, level))

	if levelErr != nil {
		slog.Warn(levelErr.Error())
	}

	slog.Debug("Se ha configurado correctamente el logger", "archivo", logPath, "nivel", level.String())
	return logFile, nil
}

// NewLogger arma un logger de texto sobre cualquier writer.
func NewLogger(writer io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// ParseLevel traduce el nivel de log del config (DEBUG, INFO, WARN, ERROR, sin importar mayúsculas).
// Si no lo reconoce devuelve INFO junto con el error.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("no existe el nivel %q, se coloca INFO por defecto", levelStr)
	}
}
