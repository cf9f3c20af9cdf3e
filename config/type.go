package config

type Config struct {
	DB     DBConfig     `json:"db"  yaml:"db"`
	Logger LoggerConfig `json:"logger"  yaml:"logger"`
	Server ServerConfig `json:"server"  yaml:"server"`
	Worker WorkerConfig `json:"worker"  yaml:"worker"`
	SSH    SSHConfig    `json:"ssh"  yaml:"ssh"`
}

type DBConfig struct {
	Host     string `json:"host"  yaml:"host"`
	Port     uint   `json:"port"  yaml:"port"`
	Username string `json:"username"  yaml:"username"`
	Password string `json:"password"  yaml:"password"`
	Database string `json:"database"  yaml:"database"`
}

type ServerConfig struct {
	HttpPort   uint   `json:"httpPort"  yaml:"httpPort"`
	SslEnabled bool   `json:"sslEnabled"  yaml:"sslEnabled"`
	Key        string `json:"key"  yaml:"key"`
	Cert       string `json:"cert"  yaml:"cert"`
}

type WorkerConfig struct {
	// PollIntervalSec is how long the worker idles when the queue is empty.
	PollIntervalSec uint `json:"pollIntervalSec"  yaml:"pollIntervalSec"`
	// ScanIntervalMin is the age after which an active server is due for a
	// scheduled discovery scan. Zero disables scheduled scans.
	ScanIntervalMin uint `json:"scanIntervalMin"  yaml:"scanIntervalMin"`
	// ScheduleCheckSec is how often the scheduler looks for due servers.
	ScheduleCheckSec uint `json:"scheduleCheckSec"  yaml:"scheduleCheckSec"`
}

type SSHConfig struct {
	ConnectTimeoutSec uint    `json:"connectTimeoutSec"  yaml:"connectTimeoutSec"`
	KeepAliveSec      uint    `json:"keepAliveSec"  yaml:"keepAliveSec"`
	MaxOpsPerSecond   float64 `json:"maxOpsPerSecond"  yaml:"maxOpsPerSecond"`
	CommandTimeoutSec uint    `json:"commandTimeoutSec"  yaml:"commandTimeoutSec"`
}

type LoggerConfig struct {
	Level  string `json:"level"  yaml:"level"`
	Output string `json:"output"  yaml:"output"`
	Path   string `json:"path"  yaml:"path"`
}
