// seed_stock genera el script SQL con el stock inicial de Bodega y Zona Franca
// a partir de un CSV exportado del sistema contable (separador ';', ISO-8859-1).
//
// Uso: go run ./cmd/seed_stock [ruta/stock.csv]
// Columnas: producto;bodega;zona_franca[;marca;linea]. La primera fila es cabecera.
// Si SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD están definidas, agrega un usuario admin.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_stock.sql
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

type stockRow struct {
	product   string
	warehouse int64
	freeZone  int64
	brand     string
	line      string
}

func main() {
	csvPath := "stock.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readStock(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_stock.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeStockSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	email, password := os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD")
	if email != "" && password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Hash de contraseña: %v\n", err)
			os.Exit(1)
		}
		out.WriteString("\n-- 3. Usuario administrador\n")
		fmt.Fprintf(out, "INSERT INTO users (id, email, name, role, password_hash, active)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', 'Administrador', '%s', '%s', true)\n",
			uuid.New().String(), escapeSQL(strings.ToLower(email)), entity.RoleAdmin, string(hash))
		out.WriteString("ON CONFLICT (email) DO NOTHING;\n")
	}

	fmt.Printf("Generado %s: %d productos\n", outPath, len(rows))
}

// readStock parsea el CSV. Filas repetidas del mismo producto se suman.
func readStock(r io.Reader) ([]stockRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	byProduct := make(map[string]*stockRow)
	for i, rec := range records[1:] {
		lineNo := i + 2
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 3 columnas", lineNo)
		}
		name := entity.NormalizeProduct(rec[0])
		if name == "" {
			continue
		}
		wh, err := parseQty(rec[1])
		if err != nil {
			return nil, fmt.Errorf("línea %d bodega: %w", lineNo, err)
		}
		fz, err := parseQty(rec[2])
		if err != nil {
			return nil, fmt.Errorf("línea %d zona_franca: %w", lineNo, err)
		}
		row, ok := byProduct[name]
		if !ok {
			row = &stockRow{product: name}
			byProduct[name] = row
		}
		row.warehouse += wh
		row.freeZone += fz
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			row.brand = strings.TrimSpace(rec[3])
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			row.line = strings.TrimSpace(rec[4])
		}
	}

	rows := make([]stockRow, 0, len(byProduct))
	for _, r := range byProduct {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].product < rows[j].product })
	return rows, nil
}

// parseQty acepta vacío como 0 y separador de miles con punto ("1.200").
func parseQty(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("cantidad negativa %d", n)
	}
	return n, nil
}

func writeStockSQL(w io.Writer, rows []stockRow) error {
	var b strings.Builder
	b.WriteString("-- Stock inicial de Bodega y Zona Franca\n")
	b.WriteString("-- Generado con cmd/seed_stock; no sobrescribe líneas existentes\n\n")

	b.WriteString("-- 1. Líneas de stock\n")
	for _, r := range rows {
		for _, l := range []struct {
			loc entity.LocationKind
			qty int64
		}{{entity.LocationWarehouse, r.warehouse}, {entity.LocationFreeZone, r.freeZone}} {
			if l.qty == 0 {
				continue
			}
			fmt.Fprintf(&b, "INSERT INTO stock_lines (product, location, total, reserved, version) VALUES ('%s', '%s', %d, 0, 1)\n",
				escapeSQL(r.product), l.loc, l.qty)
			b.WriteString("ON CONFLICT (product, location) DO NOTHING;\n")
		}
	}

	b.WriteString("\n-- 2. Catálogo\n")
	for _, r := range rows {
		if r.brand == "" && r.line == "" {
			continue
		}
		fmt.Fprintf(&b, "INSERT INTO products (name, brand, line) VALUES ('%s', '%s', '%s')\n",
			escapeSQL(r.product), escapeSQL(r.brand), escapeSQL(r.line))
		b.WriteString("ON CONFLICT (name) DO UPDATE SET brand = EXCLUDED.brand, line = EXCLUDED.line;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
