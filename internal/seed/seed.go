// Package seed installs the starter data a fresh database needs: the
// admin user, area fallback rates, the turnover bracket table and a
// minimal task catalog. Run is idempotent; re-running against a seeded
// database inserts nothing.
package seed

import (
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type defaults struct {
	AreaCosts []struct {
		Area       string  `yaml:"area"`
		HourlyCost float64 `yaml:"hourly_cost"`
	} `yaml:"area_costs"`
	TurnoverBrackets []struct {
		MinTurnover float64 `yaml:"min_turnover"`
		MaxTurnover float64 `yaml:"max_turnover"`
		MinPercent  float64 `yaml:"min_percent"`
		MaxPercent  float64 `yaml:"max_percent"`
	} `yaml:"turnover_brackets"`
	TaskDefinitions []struct {
		Name            string  `yaml:"name"`
		Area            string  `yaml:"area"`
		Type            string  `yaml:"type"`
		TimeMinutes     float64 `yaml:"time_minutes"`
		FrequencyYear   float64 `yaml:"frequency_year"`
		MultiplierLogic string  `yaml:"multiplier_logic"`
	} `yaml:"task_definitions"`
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	var data defaults
	if err := yaml.Unmarshal(defaultsYAML, &data); err != nil {
		return Stats{}, fmt.Errorf("parse embedded seed defaults: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureAreaCosts(tx, data, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureBrackets(tx, data, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCatalog(tx, data, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// hashPassword mirrors the hashing the auth layer verifies against.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func ensureAreaCosts(tx *sql.Tx, data defaults, stats *Stats) error {
	for _, ac := range data.AreaCosts {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM area_costs WHERE area = ? LIMIT 1)`, ac.Area).Scan(&exists); err != nil {
			return fmt.Errorf("check area cost existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO area_costs (area, hourly_cost)
			VALUES (?, ?)
		`, ac.Area, ac.HourlyCost); err != nil {
			return fmt.Errorf("insert area cost %q: %w", ac.Area, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureBrackets(tx *sql.Tx, data defaults, stats *Stats) error {
	// The bracket table is managed as a whole from the admin screens;
	// any existing row means the firm already curates its own table.
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM turnover_brackets LIMIT 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check turnover bracket existence: %w", err)
	}
	if exists {
		return nil
	}

	for _, b := range data.TurnoverBrackets {
		if _, err := tx.Exec(`
			INSERT INTO turnover_brackets (id, min_turnover, max_turnover, min_percent, max_percent)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.NewString(), b.MinTurnover, b.MaxTurnover, b.MinPercent, b.MaxPercent); err != nil {
			return fmt.Errorf("insert turnover bracket: %w", err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureCatalog(tx *sql.Tx, data defaults, stats *Stats) error {
	for _, task := range data.TaskDefinitions {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM task_definitions WHERE name = ? LIMIT 1)`, task.Name).Scan(&exists); err != nil {
			return fmt.Errorf("check task definition existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO task_definitions (id, name, area, type, default_time_minutes, default_frequency_year, multiplier_logic, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)
		`, uuid.NewString(), task.Name, task.Area, task.Type, task.TimeMinutes, task.FrequencyYear, task.MultiplierLogic); err != nil {
			return fmt.Errorf("insert task definition %q: %w", task.Name, err)
		}
		stats.Inserts++
	}
	return nil
}
