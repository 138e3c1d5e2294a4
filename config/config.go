package config

import (
	"time"

	"github.com/irsalhamdi/course-catalog/database"
	"github.com/irsalhamdi/course-catalog/mongodb"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Web    Web
	Cors   Cors
	Log    Log
	Store  Store
	DB     database.Config
	Mongo  mongodb.Config
	Rate   Rate
	Kafka  Kafka
	Course Course
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:3000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	StaticDir       string        `conf:"help:directory served under /public/"`
}

type Cors struct {
	Origin string
}

type Log struct {
	Level      string `conf:"default:info"`
	Format     string `conf:"default:text,help:text or json"`
	File       string `conf:"help:also write logs to this file with rotation"`
	MaxSizeMB  int    `conf:"default:100"`
	MaxBackups int    `conf:"default:3"`
	MaxAgeDays int    `conf:"default:28"`
}

type Store struct {
	Driver string `conf:"default:memory,help:memory postgres or mongo"`
}

type Rate struct {
	Enabled bool          `conf:"default:false"`
	RPS     float64       `conf:"default:10"`
	Burst   int           `conf:"default:20"`
	Expiry  time.Duration `conf:"default:3m"`
}

type Kafka struct {
	Brokers      []string
	Topic        string        `conf:"default:courses"`
	BatchTimeout time.Duration `conf:"default:50ms"`
}

type Course struct {
	NamePattern string `conf:"help:regular expression course names must match"`
}
