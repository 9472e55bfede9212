package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type CompConfig struct {
	Env            string `yaml:"env"`
	HTTPServer     `yaml:"http_server"`
	CompDB         `yaml:"comp_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka-service"`
	PayoutExecutor `yaml:"payout-executor"`
	Workers        `yaml:"workers"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type CompDB struct {
	Dsn string `yaml:"dsn"`
	// MigrationsPath switches schema management from gorm AutoMigrate to the
	// SQL migrations directory when set.
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type KafkaService struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	OrderTopic      string `yaml:"order_topic" env-default:"order-events"`
	EnrollmentTopic string `yaml:"enrollment_topic" env-default:"enrollment-events"`
	CommissionTopic string `yaml:"commission_topic" env-default:"commission-events"`
	PayoutTopic     string `yaml:"payout_topic" env-default:"payout-events"`
	GroupID         string `yaml:"group_id" env-default:"comp-service"`
}

type PayoutExecutor struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type Workers struct {
	HandoffIntervalSeconds   int `yaml:"handoff_interval_seconds" env-default:"10"`
	ReconcileIntervalSeconds int `yaml:"reconcile_interval_seconds" env-default:"60"`
	ReconcileAfterSeconds    int `yaml:"reconcile_after_seconds" env-default:"300"`
}

func MustLoad() *CompConfig {

	// Processing env config variable and file
	configPath := os.Getenv("COMP_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("COMP_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg CompConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
