// migrate aplica el esquema SQL de gatekeep contra PostgreSQL.
//
// Por defecto corre las migraciones embebidas en el binario; con -dir
// se puede apuntar a un directorio externo (desarrollo de migraciones
// nuevas sin recompilar).
//
// Uso: migrate [-config configs/config.yaml] [-dir DIR] [up|down] [steps]
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gatekeep/internal/config"
	migrations "github.com/dropDatabas3/gatekeep/migrations/postgres"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.example.yaml", "ruta al config YAML")
		dir        = flag.String("dir", "", "directorio de migraciones (default: las embebidas)")
	)
	flag.Parse()

	action, steps := parseArgs(flag.Args())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatalf("storage.dsn vacío (seteá STORAGE_DSN o storage.dsn en el YAML)")
	}

	src := fs.FS(migrations.FS)
	if *dir != "" {
		src = os.DirFS(*dir)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	if err := run(ctx, pool, src, action, steps); err != nil {
		log.Fatal(err)
	}
}

func parseArgs(args []string) (action string, steps int) {
	action = "up"
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}
	return action, steps
}

func run(ctx context.Context, pool *pgxpool.Pool, src fs.FS, action string, steps int) error {
	var files []string
	var err error

	switch action {
	case "up":
		// Ascendente: 0001 primero.
		files, err = listSQL(src, "_up.sql")
		sort.Strings(files)
	case "down":
		// Descendente: se deshace desde la más reciente.
		files, err = listSQL(src, "_down.sql")
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	default:
		return fmt.Errorf("acción desconocida %q (up | down [steps])", action)
	}
	if err != nil {
		return err
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	if len(files) == 0 {
		log.Printf("sin migraciones *%s, nada que hacer", action)
		return nil
	}

	log.Printf("aplicando %d migración(es) %s", len(files), action)
	for _, f := range files {
		sql, err := fs.ReadFile(src, f)
		if err != nil {
			return fmt.Errorf("leer %s: %w", f, err)
		}
		start := time.Now()
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("ejecutar %s: %w", f, err)
		}
		log.Printf("ok %s (%s)", f, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

func listSQL(src fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
