package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sisoputnfrba/tp-oss-paginacion/utils/config"
)

// Se corre desde la raíz del repo:
// > go run ./scripts port_oss 8010 log_level DEBUG
// > go run ./scripts user_process.termination_probability 0.5 num_frames 128

func main() {
	// Argumentos en pares: clave1 valor1 clave2 valor2 ...
	if len(os.Args) < 3 || len(os.Args)%2 != 1 {
		fmt.Println("Uso: update_config <clave_1> <valor_1> [<clave_2> <valor_2> ...]")
		fmt.Println("Ejemplo: update_config port_oss 8010 user_process.read_probability 0.5")
		os.Exit(1)
	}

	updates := make(map[string]any)
	for i := 1; i < len(os.Args); i += 2 {
		updates[os.Args[i]] = config.ParseValue(os.Args[i+1])
	}

	fmt.Println("Valores a actualizar:")
	for k, v := range updates {
		fmt.Printf("  %s: %v\n", k, v)
	}

	configPath := filepath.Join("oss", "configs")
	files, err := os.ReadDir(configPath)
	if err != nil {
		fmt.Printf("Error al leer la carpeta %s: %v\n", configPath, err)
		os.Exit(1)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		path := filepath.Join(configPath, file.Name())
		switch filepath.Ext(path) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}

		modified, err := config.UpdateFile(path, updates)
		if err != nil {
			fmt.Printf("  %v\n", err)
			continue
		}
		if len(modified) == 0 {
			fmt.Printf("  No se encontraron claves a actualizar en %s.\n", path)
			continue
		}
		fmt.Printf("  %s actualizado: %v\n", path, modified)
	}

	fmt.Println("\nProceso de actualización de configuraciones finalizado.")
}
