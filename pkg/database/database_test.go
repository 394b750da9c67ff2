package database

import (
	"quiz_backend/internal/config"
	"testing"
)

func TestDialectorSelectsDriver(t *testing.T) {
	cases := map[string]string{
		"mysql":    "mysql",
		"postgres": "postgres",
	}
	for driver, want := range cases {
		d := Dialector(&config.DatabaseConfig{
			Driver: driver,
			Host:   "localhost",
			Port:   5432,
			User:   "quiz",
			DBName: "quiz",
		})
		if got := d.Name(); got != want {
			t.Errorf("driver %s: dialector = %s, want %s", driver, got, want)
		}
	}
}

func TestInitRedisDisabled(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{Enabled: false})
	if err != nil || rdb != nil {
		t.Fatalf("disabled redis should return nil, nil; got %v, %v", rdb, err)
	}
}
