package config

import (
	"os"

	"sigs.k8s.io/yaml"
)

func ReadConfig(configPath string) (Config, error) {
	var config Config
	all, err := os.ReadFile(configPath)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(all, &config); err != nil {
		return config, err
	}

	applyDefaults(&config)
	return config, nil
}

func MustReadConfig(configPath string) Config {
	config, err := ReadConfig(configPath)
	if err != nil {
		panic(err)
	}
	return config
}

// applyDefaults fills in the knobs that are safe to leave out of the file.
func applyDefaults(c *Config) {
	if c.Worker.PollIntervalSec == 0 {
		c.Worker.PollIntervalSec = 5
	}
	if c.Worker.ScheduleCheckSec == 0 {
		c.Worker.ScheduleCheckSec = 60
	}
	if c.SSH.ConnectTimeoutSec == 0 {
		c.SSH.ConnectTimeoutSec = 10
	}
	if c.SSH.KeepAliveSec == 0 {
		c.SSH.KeepAliveSec = 30
	}
	if c.SSH.MaxOpsPerSecond == 0 {
		c.SSH.MaxOpsPerSecond = 20
	}
	if c.SSH.CommandTimeoutSec == 0 {
		c.SSH.CommandTimeoutSec = 300
	}
}
