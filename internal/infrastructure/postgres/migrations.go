package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationLockKey clave de pg_advisory_xact_lock para serializar migraciones entre procesos.
const migrationLockKey = 727_001

// Migration representa una migración versionada del esquema.
type Migration struct {
	Version *semver.Version
	Name    string
	Up      string
	Down    string
}

// LoadMigrations lee los archivos embebidos "<versión>_<nombre>.{up,down}.sql" y los
// ordena por versión semántica.
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	byVersion := make(map[string]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		file := e.Name()
		var direction string
		switch {
		case strings.HasSuffix(file, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(file, ".down.sql"):
			direction = "down"
		default:
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(file, ".sql"), "."+direction)
		rawVersion, name, _ := strings.Cut(base, "_")
		v, err := semver.NewVersion(rawVersion)
		if err != nil {
			return nil, fmt.Errorf("versión de migración inválida en %s: %w", file, err)
		}
		body, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", file, err)
		}
		m, ok := byVersion[v.String()]
		if !ok {
			m = &Migration{Version: v, Name: name}
			byVersion[v.String()] = m
		}
		if direction == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	list := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migración %s sin archivo up", m.Version)
		}
		list = append(list, *m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Version.LessThan(list[j].Version) })
	return list, nil
}

// ApplyMigrations ejecuta las migraciones pendientes, cada una en su propia transacción,
// y registra la versión en schema_version. Retorna las versiones aplicadas.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	migrations, err := LoadMigrations()
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("crear schema_version: %w", err)
	}

	applied := make([]string, 0)
	for _, m := range migrations {
		done, err := applyOne(ctx, pool, m)
		if err != nil {
			return applied, err
		}
		if done {
			applied = append(applied, m.Version.String())
		}
	}
	return applied, nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, m Migration) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin migración %s: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return false, fmt.Errorf("lock migración: %w", err)
	}
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_version WHERE version = $1)`,
		m.Version.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("leer schema_version: %w", err)
	}
	if exists {
		return false, nil
	}
	if _, err := tx.Exec(ctx, m.Up); err != nil {
		return false, fmt.Errorf("aplicar migración %s (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, m.Version.String()); err != nil {
		return false, fmt.Errorf("registrar migración %s: %w", m.Version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit migración %s: %w", m.Version, err)
	}
	return true, nil
}

// CurrentSchemaVersion retorna la mayor versión aplicada o "" si no hay ninguna.
func CurrentSchemaVersion(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_version`)
	if err != nil {
		return "", fmt.Errorf("leer schema_version: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return "", fmt.Errorf("leer schema_version: %w", err)
	}
	var current *semver.Version
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return "", fmt.Errorf("versión registrada inválida %s: %w", raw, err)
		}
		if current == nil || v.GreaterThan(current) {
			current = v
		}
	}
	if current == nil {
		return "", nil
	}
	return current.String(), nil
}

// RollbackMigration revierte la migración más reciente y retorna su versión.
func RollbackMigration(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	current, err := CurrentSchemaVersion(ctx, pool)
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", errors.New("no hay migraciones para revertir")
	}
	migrations, err := LoadMigrations()
	if err != nil {
		return "", err
	}
	var target *Migration
	for i := range migrations {
		if migrations[i].Version.String() == current {
			target = &migrations[i]
			break
		}
	}
	if target == nil || target.Down == "" {
		return "", fmt.Errorf("migración %s sin archivo down", current)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin rollback: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, target.Down); err != nil {
		return "", fmt.Errorf("revertir migración %s: %w", current, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schema_version WHERE version = $1`, current); err != nil {
		return "", fmt.Errorf("borrar registro %s: %w", current, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit rollback: %w", err)
	}
	return current, nil
}
