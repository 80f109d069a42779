package models

import (
	"errors"
	"fmt"
)

const (
	NanosPerSecond = 1_000_000_000

	// DefaultSwapLatencyNanos es el costo de traer una página de disco (14ms).
	DefaultSwapLatencyNanos = 14_000_000
)

type Config struct {
	PageSize            int     `json:"page_size" yaml:"page_size"`
	PagesPerProcess     int     `json:"pages_per_process" yaml:"pages_per_process"`
	NumFrames           int     `json:"num_frames" yaml:"num_frames"`
	MaxProcesses        int     `json:"max_processes" yaml:"max_processes"`
	ReadHitNanos        uint64  `json:"read_hit_nanos" yaml:"read_hit_nanos"`
	WriteHitNanos       uint64  `json:"write_hit_nanos" yaml:"write_hit_nanos"`
	SwapLatencyNanos    uint64  `json:"swap_latency_nanos" yaml:"swap_latency_nanos"`
	DirtyWriteBackNanos uint64  `json:"dirty_write_back_nanos" yaml:"dirty_write_back_nanos"`
	AdmissionPageNanos  uint64  `json:"admission_page_nanos" yaml:"admission_page_nanos"`
	LoopTickNanos       uint64  `json:"loop_tick_nanos" yaml:"loop_tick_nanos"`
	ReportIntervalNanos uint64  `json:"report_interval_nanos" yaml:"report_interval_nanos"`
	MaxRealSeconds      int     `json:"max_real_seconds" yaml:"max_real_seconds"`
	PortOss             int     `json:"port_oss" yaml:"port_oss"`
	LogLevel            string  `json:"log_level" yaml:"log_level"`
	RequestBuffer       int     `json:"request_buffer" yaml:"request_buffer"`
	UserProcess         UserCfg `json:"user_process" yaml:"user_process"`
}

// UserCfg es la política de pedidos de los procesos de usuario.
type UserCfg struct {
	ReadProbability        float64 `json:"read_probability" yaml:"read_probability"`
	TerminationCheckEvery  int     `json:"termination_check_every" yaml:"termination_check_every"`
	TerminationProbability float64 `json:"termination_probability" yaml:"termination_probability"`
}

// RunOptions son los parámetros de línea de comandos del oss.
type RunOptions struct {
	TotalProcesses      int    // -n
	MaxSimultaneous     int    // -s
	LaunchIntervalNanos uint64 // -t
	LogFile             string // -f
}

// DefaultConfig devuelve el hardware simulado: 256 marcos de 1K y hasta 18 procesos de 32 páginas.
func DefaultConfig() *Config {
	return &Config{
		PageSize:            1024,
		PagesPerProcess:     32,
		NumFrames:           256,
		MaxProcesses:        18,
		ReadHitNanos:        100,
		WriteHitNanos:       200,
		SwapLatencyNanos:    DefaultSwapLatencyNanos,
		DirtyWriteBackNanos: DefaultSwapLatencyNanos,
		AdmissionPageNanos:  DefaultSwapLatencyNanos,
		LoopTickNanos:       1000,
		ReportIntervalNanos: NanosPerSecond,
		MaxRealSeconds:      5,
		LogLevel:            "INFO",
		RequestBuffer:       64,
		UserProcess: UserCfg{
			ReadProbability:        0.7,
			TerminationCheckEvery:  1000,
			TerminationProbability: 0.25,
		},
	}
}

// Validate rechaza tamaños que dejarían las tablas vacías.
func (c *Config) Validate() error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size debe ser positivo: %d", c.PageSize))
	}
	if c.PagesPerProcess <= 0 {
		errs = append(errs, fmt.Errorf("pages_per_process debe ser positivo: %d", c.PagesPerProcess))
	}
	if c.NumFrames <= 0 {
		errs = append(errs, fmt.Errorf("num_frames debe ser positivo: %d", c.NumFrames))
	}
	if c.MaxProcesses <= 0 {
		errs = append(errs, fmt.Errorf("max_processes debe ser positivo: %d", c.MaxProcesses))
	}
	if c.LoopTickNanos == 0 {
		errs = append(errs, errors.New("loop_tick_nanos no puede ser 0"))
	}
	if c.RequestBuffer <= 0 {
		errs = append(errs, fmt.Errorf("request_buffer debe ser positivo: %d", c.RequestBuffer))
	}
	if p := c.UserProcess.ReadProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("read_probability fuera de [0,1]: %v", p))
	}
	if p := c.UserProcess.TerminationProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("termination_probability fuera de [0,1]: %v", p))
	}
	if c.UserProcess.TerminationCheckEvery <= 0 {
		errs = append(errs, fmt.Errorf("termination_check_every debe ser positivo: %d", c.UserProcess.TerminationCheckEvery))
	}
	return errors.Join(errs...)
}

// Validate aplica las reglas de los argumentos -n -s -t -f.
func (o RunOptions) Validate(maxProcesses int) error {
	if o.LogFile == "" {
		return errors.New("no se indicó archivo de log (-f)")
	}
	if o.TotalProcesses < 1 {
		return fmt.Errorf("-n debe ser al menos 1: %d", o.TotalProcesses)
	}
	if o.MaxSimultaneous < 1 || o.MaxSimultaneous > maxProcesses {
		return fmt.Errorf("-s debe estar entre 1 y %d: %d", maxProcesses, o.MaxSimultaneous)
	}
	if o.LaunchIntervalNanos < 1 {
		return fmt.Errorf("-t debe ser al menos 1: %d", o.LaunchIntervalNanos)
	}
	return nil
}

// AddressSpace es el tamaño del espacio virtual de un proceso en bytes.
func (c *Config) AddressSpace() uint32 {
	return uint32(c.PageSize * c.PagesPerProcess)
}
