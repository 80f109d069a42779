package models

import "testing"

func TestDefaultConfig_IsValid(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got: %v", err)
	}
	if config.AddressSpace() != 32*1024 {
		t.Errorf("Expected address space 32768, got %d", config.AddressSpace())
	}
}

func TestConfig_ValidateRejectsZeroSizes(t *testing.T) {
	config := DefaultConfig()
	config.NumFrames = 0
	config.LoopTickNanos = 0

	if err := config.Validate(); err == nil {
		t.Error("Expected error for zero frames and zero tick")
	}
}

func TestRunOptions_Validate(t *testing.T) {
	valid := RunOptions{TotalProcesses: 40, MaxSimultaneous: 18, LaunchIntervalNanos: 500_000_000, LogFile: "oss.log"}
	if err := valid.Validate(18); err != nil {
		t.Errorf("Expected valid options, got: %v", err)
	}

	cases := map[string]RunOptions{
		"sin log":         {TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 1},
		"n cero":          {TotalProcesses: 0, MaxSimultaneous: 1, LaunchIntervalNanos: 1, LogFile: "x"},
		"s mayor a tabla": {TotalProcesses: 1, MaxSimultaneous: 19, LaunchIntervalNanos: 1, LogFile: "x"},
		"s cero":          {TotalProcesses: 1, MaxSimultaneous: 0, LaunchIntervalNanos: 1, LogFile: "x"},
		"intervalo cero":  {TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 0, LogFile: "x"},
	}
	for name, options := range cases {
		if err := options.Validate(18); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}
